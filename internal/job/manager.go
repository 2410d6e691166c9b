package job

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gocloud.dev/blob"

	"github.com/LiTL0529/fuxi/internal/fetch"
	"github.com/LiTL0529/fuxi/internal/manifest"
)

// Job is one fetch-and-package run. Fields are snapshots: the Manager
// hands out copies, never pointers into its own state.
type Job struct {
	ID          string
	ScriptName  string
	Dir         string
	Total       int
	Completed   int
	Status      Status
	Message     string
	ArchivePath string
	CreatedAt   time.Time
}

// Snapshot is the JSON shape served by the status endpoint.
type Snapshot struct {
	JobID     string `json:"job_id"`
	Status    Status `json:"status"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Message   string `json:"message,omitempty"`
}

// Snapshot converts the job record to its status-endpoint shape.
func (j Job) Snapshot() Snapshot {
	return Snapshot{
		JobID:     j.ID,
		Status:    j.Status,
		Total:     j.Total,
		Completed: j.Completed,
		Message:   j.Message,
	}
}

// Options configures the Manager.
type Options struct {
	// WorkDir is the base directory; each job gets WorkDir/<job-id>.
	WorkDir string

	// Concurrency is the per-job fetch parallelism.
	// Default: fetch.DefaultConcurrency
	Concurrency int

	// FetchTimeout is the per-request HTTP timeout. Default: 90s.
	FetchTimeout time.Duration

	// PublishBucket is an optional gocloud.dev bucket URL. When set, each
	// finished archive is also copied there under <job-id>.zip.
	PublishBucket string
}

// Manager owns the job registry.
type Manager struct {
	opts   Options
	client *fetch.Client

	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewManager creates a Manager rooted at opts.WorkDir.
func NewManager(opts Options) *Manager {
	clientOpts := fetch.DefaultClientOptions()
	if opts.FetchTimeout > 0 {
		clientOpts.Timeout = opts.FetchTimeout
	}
	return &Manager{
		opts:   opts,
		client: fetch.NewClient(clientOpts),
		jobs:   make(map[string]*Job),
	}
}

// Submit parses the uploaded script, registers a new job, and starts the
// pipeline in the background. Parse failures surface synchronously and
// register nothing.
func (m *Manager) Submit(scriptName string, script []byte) (Job, error) {
	entries, err := manifest.Extract(string(script))
	if err != nil {
		return Job{}, err
	}

	id := uuid.NewString()
	dir := filepath.Join(m.opts.WorkDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Job{}, fmt.Errorf("create job directory: %w", err)
	}

	// Keep a copy of the uploaded script alongside the downloads.
	name := filepath.Base(scriptName)
	if err := os.WriteFile(filepath.Join(dir, name), script, 0644); err != nil {
		os.RemoveAll(dir)
		return Job{}, fmt.Errorf("store uploaded script: %w", err)
	}

	j := &Job{
		ID:         id,
		ScriptName: name,
		Dir:        dir,
		Total:      len(entries),
		Status:     StatusPending,
		CreatedAt:  time.Now(),
	}

	// Copy before the pipeline goroutine exists; once it runs, the record
	// may only be read under m.mu.
	out := *j

	m.mu.Lock()
	m.jobs[id] = j
	m.mu.Unlock()

	go m.run(j, entries)

	return out, nil
}

// Get returns a copy of the job record.
func (m *Manager) Get(id string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// Remove deletes the job record and its working directory.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	j, ok := m.jobs[id]
	delete(m.jobs, id)
	m.mu.Unlock()

	if ok {
		os.RemoveAll(j.Dir)
	}
}

// run executes the pipeline for one job and records the outcome.
func (m *Manager) run(j *Job, entries []manifest.Entry) {
	m.mu.Lock()
	j.Status = StatusRunning
	m.mu.Unlock()

	ctx := context.Background()

	onProgress := func(entry manifest.Entry, _ string) {
		m.mu.Lock()
		j.Completed++
		j.Message = entry.Filename + " done"
		m.mu.Unlock()
	}

	archive, _, err := fetch.CollectAndPackage(ctx, entries, j.Dir, fetch.Options{
		Concurrency: m.opts.Concurrency,
		Client:      m.client,
		Progress:    onProgress,
	})

	if err == nil && m.opts.PublishBucket != "" {
		err = m.publish(ctx, j.ID, archive)
	}

	m.mu.Lock()
	if err != nil {
		j.Status = StatusFailed
		j.Message = err.Error()
		m.mu.Unlock()
		// A failed job keeps no files around; the record stays so the
		// failure message can be polled.
		os.RemoveAll(j.Dir)
		return
	}
	j.Status = StatusCompleted
	j.ArchivePath = archive
	j.Message = "completed"
	m.mu.Unlock()
}

// publish copies the finished archive into the configured bucket.
func (m *Manager) publish(ctx context.Context, id, archive string) error {
	bkt, err := blob.OpenBucket(ctx, m.opts.PublishBucket)
	if err != nil {
		return fmt.Errorf("open publish bucket: %w", err)
	}
	defer bkt.Close()

	in, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer in.Close()

	w, err := bkt.NewWriter(ctx, id+".zip", nil)
	if err != nil {
		return fmt.Errorf("create bucket writer: %w", err)
	}
	if _, err := io.Copy(w, in); err != nil {
		w.Close()
		return fmt.Errorf("upload archive: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize upload: %w", err)
	}
	return nil
}
