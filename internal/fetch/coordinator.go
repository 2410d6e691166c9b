package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/LiTL0529/fuxi/internal/bundle"
	"github.com/LiTL0529/fuxi/internal/manifest"
)

const (
	// dataSubdir is the directory under the workdir holding raw fetches.
	dataSubdir = "nc"

	// ArchiveName is the file name of the bundled archive inside the workdir.
	ArchiveName = "nc_bundle.zip"

	// DefaultConcurrency is the fetch parallelism used when Options leaves
	// Concurrency unset.
	DefaultConcurrency = 4
)

// ProgressFunc is invoked once per successfully fetched entry, before that
// entry counts as complete. It runs on worker goroutines and must be safe
// for concurrent use.
type ProgressFunc func(entry manifest.Entry, path string)

// Options configures CollectAndPackage.
type Options struct {
	// Concurrency is the maximum number of simultaneous fetches.
	// Default: DefaultConcurrency, minimum 1.
	Concurrency int

	// Client is the HTTP client to fetch with. Default: NewClient with
	// default options.
	Client *Client

	// Progress is an optional per-entry completion callback.
	Progress ProgressFunc
}

// CollectAndPackage downloads all entries into workdir and bundles them
// into a single zip archive. It returns the archive path and the local
// file paths in entry order.
//
// Entries are fetched concurrently, bounded by Options.Concurrency. Every
// scheduled fetch runs to completion before the function returns; if any
// entry fails, the first error is returned, no archive is written, and
// already-fetched files are left in the workdir for the caller to discard.
func CollectAndPackage(ctx context.Context, entries []manifest.Entry, workdir string, opts Options) (string, []string, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Client == nil {
		opts.Client = NewClient(DefaultClientOptions())
	}

	dataDir := filepath.Join(workdir, dataSubdir)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", nil, fmt.Errorf("create data directory: %w", err)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	// The admission gate: a worker owns a slot for the duration of one
	// fetch, including the progress callback.
	gate := make(chan struct{}, opts.Concurrency)
	paths := make([]string, len(entries))

	for i, entry := range entries {
		wg.Add(1)
		go func(i int, entry manifest.Entry) {
			defer wg.Done()

			gate <- struct{}{}
			defer func() { <-gate }()

			path, err := Fetch(ctx, opts.Client, entry, dataDir)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}

			paths[i] = path
			if opts.Progress != nil {
				opts.Progress(entry, path)
			}
		}(i, entry)
	}

	wg.Wait()

	if firstErr != nil {
		return "", nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	archivePath := filepath.Join(workdir, ArchiveName)
	if err := bundle.Write(archivePath, paths); err != nil {
		return "", nil, err
	}

	return archivePath, paths, nil
}
