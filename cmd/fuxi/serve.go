package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/LiTL0529/fuxi/internal/config"
	"github.com/LiTL0529/fuxi/internal/job"
	"github.com/LiTL0529/fuxi/internal/server"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)

	configPath := fs.String("config", "", "Path to a YAML config file")
	listen := fs.String("listen", "", "HTTP listen address (overrides config)")
	workDir := fs.String("workdir", "", "Base directory for job working dirs (overrides config)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: fuxi serve [options]

Run the job-tracking HTTP service. Scripts are uploaded via POST /upload,
progress is polled via GET /status/{id}, and finished archives are served
via GET /download/{id}.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadFromFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			return ExitConfigError
		}
		cfg = loaded
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading environment: %v\n", err)
		return ExitConfigError
	}
	cfg = cfg.Merge(config.Config{Listen: *listen, WorkDir: *workDir})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}

	if err := os.MkdirAll(cfg.WorkDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating work dir: %v\n", err)
		return ExitGeneralError
	}

	manager := job.NewManager(job.Options{
		WorkDir:       cfg.WorkDir,
		Concurrency:   cfg.Concurrency,
		FetchTimeout:  cfg.FetchTimeout,
		PublishBucket: cfg.PublishBucket,
	})

	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: server.New(manager).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s (work dir %s)", cfg.Listen, cfg.WorkDir)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitGeneralError
		}
	case <-sigCh:
		log.Printf("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
			return ExitGeneralError
		}
	}

	return ExitSuccess
}
