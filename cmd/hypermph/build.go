package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/tamirms/hypermph"
	"github.com/tamirms/hypermph/internal/keyfile"
)

func newBuildCmd(flags *rootFlags) *cobra.Command {
	var (
		workers   int
		seed      uint64
		chunkSize uint64
		progress  bool
	)
	cmd := &cobra.Command{
		Use:   "build KEYS OUT",
		Short: "Build a structure file from a key file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := flags.hashAlgorithm()
			if err != nil {
				return err
			}
			logger := flags.logger()

			opts := []hypermph.BuildOption{
				hypermph.WithWorkers(workers),
				hypermph.WithGlobalSeed(seed),
				hypermph.WithChunkSize(chunkSize),
				hypermph.WithHashAlgorithm(hash),
				hypermph.WithLogger(logger),
			}

			var bar *progressbar.ProgressBar
			if progress {
				opts = append(opts, hypermph.WithProgress(func(done, total int) {
					if bar == nil {
						bar = progressbar.Default(int64(total), "solving chunks")
					}
					_ = bar.Set(done)
				}))
			}

			start := time.Now()
			var idx *hypermph.Index
			if flags.strings {
				keys, err := keyfile.ReadLines(args[0])
				if err != nil {
					return err
				}
				logger.Debug("read keys", "path", args[0], "count", len(keys))
				idx, err = hypermph.Build(cmd.Context(), keys, opts...)
				if err != nil {
					return err
				}
			} else {
				keys, err := keyfile.ReadUint64s(args[0])
				if err != nil {
					return err
				}
				logger.Debug("read keys", "path", args[0], "count", len(keys))
				idx, err = hypermph.BuildUint64(cmd.Context(), keys, opts...)
				if err != nil {
					return err
				}
			}
			if bar != nil {
				_ = bar.Finish()
			}
			buildDuration := time.Since(start)

			if err := idx.WriteFile(args[1]); err != nil {
				return err
			}

			stats := idx.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "keys:        %s\n", humanize.Comma(int64(stats.NumKeys)))
			fmt.Fprintf(out, "size:        %s (%.3f bits/key)\n", humanize.Bytes(stats.SizeBytes), stats.BitsPerKey)
			fmt.Fprintf(out, "build time:  %s (%.2f M keys/sec)\n", buildDuration.Round(time.Millisecond),
				float64(stats.NumKeys)/buildDuration.Seconds()/1_000_000)
			fmt.Fprintf(out, "checksum:    %016x\n", stats.Checksum)
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "number of parallel chunk solvers")
	cmd.Flags().Uint64Var(&seed, "seed", 0x1234567890abcdef, "global hash seed")
	cmd.Flags().Uint64Var(&chunkSize, "chunk-size", 1024, "target keys per chunk")
	cmd.Flags().BoolVar(&progress, "progress", true, "show a progress bar while solving")
	return cmd
}
