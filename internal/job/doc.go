// Package job tracks fetch-and-package jobs for the HTTP service.
//
// A job is one end-to-end run: parse an uploaded wget script, download
// every dataset it references, and bundle the results into a zip archive
// inside a per-job working directory. The Manager owns job identity,
// status bookkeeping, and cleanup; the actual pipeline lives in
// internal/fetch.
//
// All job state is mutated under the Manager's lock. Progress updates
// arrive concurrently from fetch workers and are folded into the job
// record one at a time.
//
// Failed jobs keep their record (so clients can read the failure message)
// but lose their working directory immediately. Completed jobs keep both
// until Remove is called, which the HTTP layer does after the archive has
// been served.
package job
