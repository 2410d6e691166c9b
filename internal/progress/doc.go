// Package progress provides progress reporting for dataset downloads.
//
// This package outputs human-readable progress information to stderr,
// including the number of completed files and the cumulative bytes
// transferred.
//
// # Usage
//
//	reporter := progress.NewReporter(Options{
//	    TotalFiles: len(entries),
//	    ScriptName: "cmip6-tas.sh",
//	})
//
//	reporter.Start()
//	defer reporter.Stop()
//
//	// Update as files complete
//	reporter.FileCompleted(fileSize)
//
// # Output Format
//
//	[fuxi] Fetching 12 files from cmip6-tas.sh
//	[fuxi] Files: 7/12 | 1.25 GB downloaded | elapsed: 1m 12s
package progress
