package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/LiTL0529/fuxi/internal/fetch"
	"github.com/LiTL0529/fuxi/internal/manifest"
	"github.com/LiTL0529/fuxi/internal/progress"
)

func runFetch(args []string) int {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)

	script := fs.String("script", "", "Path to the wget script (required)")
	workdir := fs.String("workdir", "fuxi-out", "Working directory for downloads and the archive")
	concurrency := fs.Int("concurrency", fetch.DefaultConcurrency, "Number of parallel downloads")
	timeout := fs.Duration("timeout", 90*time.Second, "Per-request HTTP timeout")
	showProgress := fs.Bool("progress", false, "Show progress output")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: fuxi fetch [options]

Download every dataset referenced by a wget script, verify checksums,
and bundle the files into a single zip archive in the working directory.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *script == "" {
		fmt.Fprintln(os.Stderr, "Error: -script is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	data, err := os.ReadFile(*script)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading script: %v\n", err)
		return ExitGeneralError
	}

	entries, err := manifest.Extract(string(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitBadScript
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for shutdown; partially fetched files stay in the
	// working directory for the caller to discard.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[fuxi] Received interrupt, shutting down...")
		cancel()
	}()

	opts := fetch.Options{
		Concurrency: *concurrency,
		Client: fetch.NewClient(fetch.ClientOptions{
			Timeout: *timeout,
		}),
	}

	var reporter *progress.Reporter
	if *showProgress {
		reporter = progress.NewReporter(progress.Options{
			TotalFiles: len(entries),
			ScriptName: filepath.Base(*script),
		})
		reporter.Start()
		defer reporter.Stop()

		opts.Progress = func(_ manifest.Entry, path string) {
			var size int64
			if info, err := os.Stat(path); err == nil {
				size = info.Size()
			}
			reporter.FileCompleted(size)
		}
	}

	archive, paths, err := fetch.CollectAndPackage(ctx, entries, *workdir, opts)
	if reporter != nil {
		reporter.Stop()
	}
	if err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "[fuxi] Fetch interrupted")
			return ExitGeneralError
		}
		var integrity *fetch.IntegrityError
		if errors.As(err, &integrity) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", integrity)
			return ExitFetchFailed
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitFetchFailed
	}

	fmt.Fprintf(os.Stderr, "[fuxi] Fetched %d files\n", len(paths))
	fmt.Fprintf(os.Stderr, "[fuxi] Archive: %s\n", archive)

	return ExitSuccess
}
