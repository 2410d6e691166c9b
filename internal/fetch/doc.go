// Package fetch downloads dataset files and packages them into an archive.
//
// This package combines three pieces:
//   - Client: an HTTP client tuned for long streaming downloads
//   - Fetch: download one entry to disk with streaming checksum verification
//   - CollectAndPackage: fan out many fetches under a concurrency cap and
//     bundle the results into a single zip archive
//
// # Usage
//
//	archive, paths, err := fetch.CollectAndPackage(ctx, entries, workdir, fetch.Options{
//	    Concurrency: 4,
//	    Progress: func(entry manifest.Entry, path string) {
//	        // called once per completed entry, from worker goroutines
//	    },
//	})
//
// # Failure semantics
//
// The first failing entry fails the whole run: no archive is produced and
// the caller is expected to discard the working directory. Files fetched
// by sibling workers before the failure are left in place. The package
// never retries; resubmitting the job is the caller's policy.
package fetch
