package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tamirms/hypermph/internal/keyfile"
)

// mix64 is the SplitMix64 finalizer. It is a bijection, so distinct inputs
// give distinct keys.
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// genKeys returns count distinct pseudo-random keys determined by seed.
func genKeys(count int, seed uint64) []uint64 {
	keys := make([]uint64, count)
	for i := range keys {
		keys[i] = mix64(seed + uint64(i)*0x9e3779b97f4a7c15)
	}
	return keys
}

func newGenCmd(flags *rootFlags) *cobra.Command {
	var (
		count int
		seed  uint64
	)
	cmd := &cobra.Command{
		Use:   "gen OUT",
		Short: "Write a file of random distinct keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}
			keys := genKeys(count, seed)

			var err error
			if flags.strings {
				lines := make([][]byte, len(keys))
				for i, k := range keys {
					lines[i] = strconv.AppendUint(nil, k, 16)
				}
				err = keyfile.WriteLines(args[0], lines)
			} else {
				err = keyfile.WriteUint64s(args[0], keys)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s keys to %s\n", humanize.Comma(int64(count)), args[0])
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1_000_000, "number of keys")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "generator seed")
	return cmd
}
