package main

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tamirms/hypermph"
	"github.com/tamirms/hypermph/internal/keyfile"
)

// benchResult summarizes the timed lookup rounds.
type benchResult struct {
	rounds []time.Duration
	keys   int
	xor    uint64 // XOR of every lookup result, printed so the loop cannot be elided
}

func (r *benchResult) nsPerKey(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / float64(r.keys)
}

func (r *benchResult) average() time.Duration {
	var total time.Duration
	for _, d := range r.rounds {
		total += d
	}
	return total / time.Duration(len(r.rounds))
}

func benchUint64(idx *hypermph.Index, keys []uint64, rounds int) benchResult {
	res := benchResult{keys: len(keys)}
	for range rounds {
		var x uint64
		start := time.Now()
		for _, k := range keys {
			x ^= idx.LookupUint64(k)
		}
		res.rounds = append(res.rounds, time.Since(start))
		res.xor ^= x
	}
	return res
}

func benchBytes(idx *hypermph.Index, keys [][]byte, rounds int) benchResult {
	res := benchResult{keys: len(keys)}
	for range rounds {
		var x uint64
		start := time.Now()
		for _, k := range keys {
			x ^= idx.LookupBytes(k)
		}
		res.rounds = append(res.rounds, time.Since(start))
		res.xor ^= x
	}
	return res
}

func printBench(out io.Writer, res benchResult) {
	for i, d := range res.rounds {
		fmt.Fprintf(out, "round %2d: %s (%.2f ns/key)\n", i, d.Round(time.Microsecond), res.nsPerKey(d))
	}
	avg := res.average()
	fmt.Fprintf(out, "average:  %s (%.2f ns/key)\n", avg.Round(time.Microsecond), res.nsPerKey(avg))
	fmt.Fprintf(out, "xor:      %016x\n", res.xor)
	fmt.Fprintf(out, "peak RSS: %s\n", humanize.Bytes(getMaxRSS()))
}

func newBenchCmd(flags *rootFlags) *cobra.Command {
	var rounds int
	cmd := &cobra.Command{
		Use:   "bench STRUCT KEYS",
		Short: "Time lookups of every key in a key file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if rounds <= 0 {
				return fmt.Errorf("--rounds must be positive, got %d", rounds)
			}
			hash, err := flags.hashAlgorithm()
			if err != nil {
				return err
			}
			logger := flags.logger()

			idx, err := hypermph.Open(args[0], hypermph.UsingHashAlgorithm(hash))
			if err != nil {
				return err
			}
			defer idx.Close()

			var res benchResult
			if flags.strings {
				keys, err := keyfile.ReadLines(args[1])
				if err != nil {
					return err
				}
				if len(keys) == 0 {
					return fmt.Errorf("%s holds no keys", args[1])
				}
				runtime.GC()
				logger.Debug("benchmarking byte keys", "count", len(keys), "rounds", rounds)
				res = benchBytes(idx, keys, rounds)
			} else {
				keys, err := keyfile.ReadUint64s(args[1])
				if err != nil {
					return err
				}
				if len(keys) == 0 {
					return fmt.Errorf("%s holds no keys", args[1])
				}
				runtime.GC()
				logger.Debug("benchmarking uint64 keys", "count", len(keys), "rounds", rounds)
				res = benchUint64(idx, keys, rounds)
			}

			printBench(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().IntVarP(&rounds, "rounds", "r", 10, "number of timed rounds")
	return cmd
}
