package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// Marker is the here-document delimiter ESGF wget scripts use around the
// embedded download block.
const Marker = "EOF--dataset.file.url.chksum_type.chksum"

// openDirective is the substring that starts the block. The opening line
// usually reads `download_files="$(cat <<EOF--...`, so we match on the
// here-document redirection rather than the whole line.
const openDirective = "<<" + Marker

// Common errors.
var (
	ErrBlockNotFound = errors.New("manifest: download block not found")
	ErrNoEntries     = errors.New("manifest: no dataset entries found")
)

// Entry describes a single dataset file declared in the script.
//
// ChecksumType and Checksum are empty when the line carries no checksum
// information. ChecksumType is normalized to lowercase but is not
// validated here; an unsupported algorithm is rejected at fetch time.
type Entry struct {
	Filename     string `json:"filename"`
	URL          string `json:"url"`
	ChecksumType string `json:"checksum_type,omitempty"`
	Checksum     string `json:"checksum,omitempty"`
}

// Extract returns all dataset entries declared in the embedded download
// block, in the order they appear.
func Extract(text string) ([]Entry, error) {
	block, err := readDownloadBlock(text)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for i, raw := range block {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		tokens, err := shlex.Split(line)
		if err != nil {
			return nil, fmt.Errorf("manifest: tokenize block line %d: %w", i+1, err)
		}
		if len(tokens) < 2 {
			continue
		}

		entry := Entry{
			Filename: stripQuotes(tokens[0]),
			URL:      stripQuotes(tokens[1]),
		}
		if len(tokens) > 2 {
			entry.ChecksumType = strings.ToLower(tokens[2])
		}
		if len(tokens) > 3 {
			entry.Checksum = stripQuotes(tokens[3])
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	return entries, nil
}

// readDownloadBlock returns the lines between the opening here-document
// directive and the closing marker. A missing closing marker is tolerated:
// everything after the opener is treated as the block. Scripts in the wild
// are occasionally truncated and the original tooling accepted them.
func readDownloadBlock(text string) ([]string, error) {
	var (
		block  []string
		inside bool
	)
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if !inside {
			if strings.Contains(line, openDirective) {
				inside = true
			}
			continue
		}
		if line == Marker {
			break
		}
		block = append(block, raw)
	}
	if len(block) == 0 {
		return nil, ErrBlockNotFound
	}
	return block, nil
}

// stripQuotes removes any leading/trailing single or double quotes.
func stripQuotes(value string) string {
	return strings.Trim(value, `'"`)
}
