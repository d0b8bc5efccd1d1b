package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tamirms/hypermph"
)

func newInfoCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "info STRUCT",
		Short: "Print statistics of a structure file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := flags.hashAlgorithm()
			if err != nil {
				return err
			}
			stats, err := hypermph.GetStats(args[0], hypermph.UsingHashAlgorithm(hash))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "keys:         %s\n", humanize.Comma(int64(stats.NumKeys)))
			fmt.Fprintf(out, "chunks:       %s (shift %d)\n", humanize.Comma(int64(stats.NumChunks)), stats.ChunkShift)
			fmt.Fprintf(out, "vertices:     %s\n", humanize.Comma(int64(stats.Vertices)))
			fmt.Fprintf(out, "field width:  %d bits\n", stats.FieldWidth)
			fmt.Fprintf(out, "size:         %s\n", humanize.Bytes(stats.SizeBytes))
			fmt.Fprintf(out, "bits per key: %.3f\n", stats.BitsPerKey)
			fmt.Fprintf(out, "checksum:     %016x\n", stats.Checksum)
			return nil
		},
	}
}
