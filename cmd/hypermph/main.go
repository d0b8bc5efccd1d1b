// Hypermph builds, inspects, and benchmarks hypermph structure files.
//
// Usage:
//
//	hypermph gen --count 1000000 keys.bin
//	hypermph build --workers 8 keys.bin keys.mph
//	hypermph bench --rounds 10 keys.mph keys.bin
//	hypermph info keys.mph
//	hypermph lookup keys.mph 42 43
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tamirms/hypermph"
)

// rootFlags holds flags shared by every subcommand.
type rootFlags struct {
	verbose bool
	strings bool
	hash    string
}

func (f *rootFlags) logger() *slog.Logger {
	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (f *rootFlags) hashAlgorithm() (hypermph.HashAlgorithm, error) {
	return hypermph.ParseHashAlgorithm(f.hash)
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:           "hypermph",
		Short:         "Chunked hypergraph minimal perfect hash tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log debug diagnostics to stderr")
	pf.BoolVar(&flags.strings, "strings", false, "key files hold one byte key per line instead of little-endian uint64s")
	pf.StringVar(&flags.hash, "hash", hypermph.HashXXH3.String(), "wide hash: xxh3 or murmur3")

	rootCmd.AddCommand(
		newGenCmd(flags),
		newBuildCmd(flags),
		newBenchCmd(flags),
		newInfoCmd(flags),
		newLookupCmd(flags),
	)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "hypermph: %v\n", err)
		stop()
		os.Exit(1)
	}
}
