package job

// Status represents the lifecycle state of a job.
type Status string

const (
	// StatusPending means the job is accepted but not yet started.
	StatusPending Status = "pending"

	// StatusRunning means downloads are in progress.
	StatusRunning Status = "running"

	// StatusCompleted means the archive is ready for download.
	StatusCompleted Status = "completed"

	// StatusFailed means the job failed and its working directory is gone.
	StatusFailed Status = "failed"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsFinished reports whether the job reached a terminal state.
func (s Status) IsFinished() bool {
	return s == StatusCompleted || s == StatusFailed
}
