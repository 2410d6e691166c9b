// Package server exposes the job-tracking HTTP API.
//
// Endpoints:
//
//	GET  /               minimal upload form
//	POST /inspect        parse a script, return its entries without fetching
//	POST /upload         submit a script as a background job
//	GET  /status/{id}    poll job progress
//	GET  /download/{id}  download the finished archive (removes the job)
//
// Scripts are uploaded as multipart form data under the field "script".
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/LiTL0529/fuxi/internal/job"
	"github.com/LiTL0529/fuxi/internal/manifest"
)

// maxScriptSize bounds uploaded scripts. Real wget scripts are a few
// hundred KB at most.
const maxScriptSize = 8 << 20

const homePage = `<!doctype html>
<html>
<head><title>fuxi</title></head>
<body>
<h1>fuxi</h1>
<p>Upload an ESGF wget script to fetch and bundle its datasets.</p>
<form action="/upload" method="post" enctype="multipart/form-data">
<input type="file" name="script">
<button type="submit">Upload</button>
</form>
</body>
</html>
`

// Server serves the job API on top of a job.Manager.
type Server struct {
	manager *job.Manager
}

// New creates a Server.
func New(manager *job.Manager) *Server {
	return &Server{manager: manager}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("POST /inspect", s.handleInspect)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /status/{id}", s.handleStatus)
	mux.HandleFunc("GET /download/{id}", s.handleDownload)
	return mux
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, homePage)
}

// handleInspect parses an uploaded script and lists its entries without
// starting any downloads.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	script, _, err := readScript(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := manifest.Extract(string(script))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(entries),
		"datasets": entries,
	})
}

// handleUpload submits a script as a background job.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	script, name, err := readScript(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	j, err := s.manager.Submit(name, script)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	log.Printf("job %s accepted: %s (%d files)", j.ID, j.ScriptName, j.Total)
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": j.ID})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	j, ok := s.manager.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, j.Snapshot())
}

// handleDownload serves the finished archive and discards the job.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	j, ok := s.manager.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if j.Status != job.StatusCompleted || j.ArchivePath == "" {
		writeError(w, http.StatusBadRequest, "job not ready")
		return
	}

	stem := strings.TrimSuffix(j.ScriptName, filepath.Ext(j.ScriptName))
	filename := stem + "_nc_files.zip"

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, j.ArchivePath)

	// The archive is gone once it has been handed out.
	s.manager.Remove(j.ID)
	log.Printf("job %s downloaded and removed", j.ID)
}

// readScript extracts the uploaded script from the multipart form.
func readScript(r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxScriptSize)

	file, header, err := r.FormFile("script")
	if err != nil {
		return nil, "", errors.New("missing script upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, "", errors.New("empty file uploaded")
	}
	return data, header.Filename, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}
