package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/LiTL0529/fuxi/internal/manifest"
)

func runInspect(args []string) int {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)

	script := fs.String("script", "", "Path to the wget script (required)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: fuxi inspect [options]

Parse a wget script and list the dataset entries it references,
without downloading anything.

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
		if errors.Is(err, manifest.ErrBlockNotFound) || errors.Is(err, manifest.ErrNoEntries) {
			return ExitBadScript
		}
		return ExitGeneralError
	}

	fmt.Printf("%d dataset entries\n", len(entries))
	for _, e := range entries {
		if e.ChecksumType != "" {
			fmt.Printf("  %s  %s  (%s %s)\n", e.Filename, e.URL, e.ChecksumType, e.Checksum)
		} else {
			fmt.Printf("  %s  %s\n", e.Filename, e.URL)
		}
	}

	return ExitSuccess
}
