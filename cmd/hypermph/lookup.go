package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tamirms/hypermph"
)

func newLookupCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup STRUCT KEY...",
		Short: "Print the index of each key",
		Long: `Print the index of each key. Keys are parsed as unsigned integers
(decimal, or 0x-prefixed hex) unless --strings is set.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := flags.hashAlgorithm()
			if err != nil {
				return err
			}
			idx, err := hypermph.Open(args[0], hypermph.UsingHashAlgorithm(hash))
			if err != nil {
				return err
			}
			defer idx.Close()

			out := cmd.OutOrStdout()
			for _, arg := range args[1:] {
				if flags.strings {
					fmt.Fprintf(out, "%s\t%d\n", arg, idx.LookupString(arg))
					continue
				}
				key, err := strconv.ParseUint(arg, 0, 64)
				if err != nil {
					return fmt.Errorf("parse key %q: %w", arg, err)
				}
				fmt.Fprintf(out, "%s\t%d\n", arg, idx.LookupUint64(key))
			}
			return nil
		},
	}
}
