package fetch

import "fmt"

// TransferError reports a failed HTTP transfer: a network-level failure or
// a non-success status code.
type TransferError struct {
	URL    string
	Status string // HTTP status line, empty for network failures
	Err    error  // underlying error, nil for status failures
}

func (e *TransferError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("fetch %s: unexpected status %s", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// IntegrityError reports a checksum mismatch. The partially written file
// has already been removed by the time this error is returned.
type IntegrityError struct {
	Filename string
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected %s, got %s",
		e.Filename, e.Expected, e.Actual)
}
