// Package checksum provides streaming digest verification for fetched files.
//
// The supported algorithm set is fixed and small, so algorithms are a
// closed enum rather than a string-keyed registry. AlgoNone is valid and
// turns verification into a no-op.
package checksum

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"
)

// ErrUnsupported is returned when a script declares a checksum algorithm
// outside the supported set.
var ErrUnsupported = errors.New("checksum: unsupported algorithm")

// Algorithm identifies a supported digest algorithm.
type Algorithm int

const (
	AlgoNone Algorithm = iota
	AlgoSHA256
	AlgoMD5
)

// String returns the lowercase algorithm name.
func (a Algorithm) String() string {
	switch a {
	case AlgoSHA256:
		return "sha256"
	case AlgoMD5:
		return "md5"
	default:
		return "none"
	}
}

// Parse maps an algorithm name to an Algorithm. Names are matched
// case-insensitively; the empty string means no verification.
func Parse(name string) (Algorithm, error) {
	switch strings.ToLower(name) {
	case "":
		return AlgoNone, nil
	case "sha256":
		return AlgoSHA256, nil
	case "md5":
		return AlgoMD5, nil
	default:
		return AlgoNone, fmt.Errorf("%w: %q", ErrUnsupported, name)
	}
}

// Verifier accumulates bytes and produces a hex digest. The zero-value
// semantics follow the algorithm: a Verifier for AlgoNone accepts writes,
// reports an empty digest, and matches everything.
type Verifier struct {
	algo Algorithm
	h    hash.Hash
}

// NewVerifier returns a streaming verifier for the given algorithm.
func NewVerifier(algo Algorithm) *Verifier {
	v := &Verifier{algo: algo}
	switch algo {
	case AlgoSHA256:
		v.h = sha256.New()
	case AlgoMD5:
		v.h = md5.New()
	}
	return v
}

// Active reports whether the verifier actually computes a digest.
func (v *Verifier) Active() bool {
	return v.h != nil
}

// Write feeds a chunk into the digest. It never fails.
func (v *Verifier) Write(p []byte) (int, error) {
	if v.h == nil {
		return len(p), nil
	}
	return v.h.Write(p)
}

// HexDigest returns the lowercase hex digest of everything written so far.
func (v *Verifier) HexDigest() string {
	if v.h == nil {
		return ""
	}
	return hex.EncodeToString(v.h.Sum(nil))
}

// Matches compares the accumulated digest to an expected value,
// ignoring case. It is always true when no algorithm is configured.
func (v *Verifier) Matches(expected string) bool {
	if v.h == nil {
		return true
	}
	return strings.EqualFold(v.HexDigest(), expected)
}
