package fetch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/LiTL0529/fuxi/internal/checksum"
	"github.com/LiTL0529/fuxi/internal/manifest"
)

// chunkSize is the copy buffer size: each network read and disk write
// moves at most this many bytes before feeding the verifier.
const chunkSize = 1 << 20 // 1 MiB

// Fetch downloads one entry into destDir and returns the local file path.
//
// The response body is streamed to disk in 1 MiB chunks while the checksum
// accumulator (if the entry declares one) digests the same bytes. When the
// entry carries an expected checksum and the digest does not match, the
// written file is removed and an *IntegrityError is returned. An entry
// declaring an unknown algorithm fails before any network I/O.
func Fetch(ctx context.Context, client *Client, entry manifest.Entry, destDir string) (string, error) {
	algo, err := checksum.Parse(entry.ChecksumType)
	if err != nil {
		return "", fmt.Errorf("%s: %w", entry.Filename, err)
	}
	verifier := checksum.NewVerifier(algo)

	target := filepath.Join(destDir, entry.Filename)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("create target directory: %w", err)
	}

	body, err := client.Get(ctx, entry.URL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", target, err)
	}

	// The sink remembers its own failures so a copy error can be classed
	// correctly: a failed disk write is a local I/O problem, everything
	// else came from reading the response body.
	sink := &errorTrackingWriter{w: out}
	var w io.Writer = sink
	if verifier.Active() {
		w = io.MultiWriter(sink, verifier)
	}

	buf := make([]byte, chunkSize)
	_, copyErr := io.CopyBuffer(w, body, buf)
	closeErr := out.Close()
	if copyErr != nil {
		os.Remove(target)
		if sink.err != nil {
			return "", fmt.Errorf("write %s: %w", target, sink.err)
		}
		return "", &TransferError{URL: entry.URL, Err: copyErr}
	}
	if closeErr != nil {
		os.Remove(target)
		return "", fmt.Errorf("close %s: %w", target, closeErr)
	}

	if entry.Checksum != "" && !verifier.Matches(entry.Checksum) {
		// Remove the corrupt file before reporting; a missing file is fine.
		os.Remove(target)
		return "", &IntegrityError{
			Filename: entry.Filename,
			Expected: entry.Checksum,
			Actual:   verifier.HexDigest(),
		}
	}

	return target, nil
}

// errorTrackingWriter records the first error returned by the underlying
// writer.
type errorTrackingWriter struct {
	w   io.Writer
	err error
}

func (t *errorTrackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil && t.err == nil {
		t.err = err
	}
	return n, err
}
