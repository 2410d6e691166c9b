// Package testutils provides shared test infrastructure.
package testutils

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/LiTL0529/fuxi/internal/manifest"
)

// StartFileServer starts an HTTP server that serves the given files by name.
// Unknown paths return 404.
func StartFileServer(t *testing.T, files map[string][]byte) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := files[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
}

// BuildScript wraps the given data lines in a minimal wget script with the
// standard download block markers.
func BuildScript(lines ...string) string {
	var b strings.Builder
	b.WriteString("#!/bin/bash\n")
	b.WriteString("# ESGF wget download script\n")
	b.WriteString(fmt.Sprintf("download_files=\"$(cat <<%s\n", manifest.Marker))
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(manifest.Marker + "\n")
	b.WriteString(")\"\n")
	return b.String()
}

// EntryLine formats one download block line for the given file served by
// srv, declaring its sha256 checksum.
func EntryLine(srv *httptest.Server, name string, data []byte) string {
	return fmt.Sprintf("'%s' '%s/%s' 'SHA256' '%s'", name, srv.URL, name, SHA256Hex(data))
}

// SHA256Hex returns the lowercase hex sha256 digest of data.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// MD5Hex returns the lowercase hex md5 digest of data.
func MD5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
