// Package config defines configuration structures for the fuxi service.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (FUXI_ prefix)
//   - YAML configuration file
//
// # Structure
//
//	type Config struct {
//	    WorkDir       string        // base directory for job working dirs
//	    Listen        string        // HTTP listen address
//	    Concurrency   int           // parallel fetches per job
//	    FetchTimeout  time.Duration // per-request timeout
//	    PublishBucket string        // optional gocloud.dev bucket URL
//	}
package config
