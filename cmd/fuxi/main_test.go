package main

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/LiTL0529/fuxi/internal/testutils"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.sh")
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestRunNoArgs(t *testing.T) {
	if code := run(nil); code != ExitInvalidArgs {
		t.Errorf("run() = %d, want %d", code, ExitInvalidArgs)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	if code := run([]string{"frobnicate"}); code != ExitInvalidArgs {
		t.Errorf("run(frobnicate) = %d, want %d", code, ExitInvalidArgs)
	}
}

func TestRunHelp(t *testing.T) {
	for _, arg := range []string{"help", "-h", "--help"} {
		if code := run([]string{arg}); code != ExitSuccess {
			t.Errorf("run(%s) = %d, want %d", arg, code, ExitSuccess)
		}
	}
}

func TestInspectMissingScriptFlag(t *testing.T) {
	if code := runInspect(nil); code != ExitInvalidArgs {
		t.Errorf("runInspect() = %d, want %d", code, ExitInvalidArgs)
	}
}

func TestInspectMissingFile(t *testing.T) {
	code := runInspect([]string{"-script", filepath.Join(t.TempDir(), "absent.sh")})
	if code != ExitGeneralError {
		t.Errorf("runInspect() = %d, want %d", code, ExitGeneralError)
	}
}

func TestInspectBadScript(t *testing.T) {
	path := writeScript(t, "#!/bin/bash\necho nothing here\n")
	if code := runInspect([]string{"-script", path}); code != ExitBadScript {
		t.Errorf("runInspect() = %d, want %d", code, ExitBadScript)
	}
}

func TestInspectValidScript(t *testing.T) {
	path := writeScript(t, testutils.BuildScript(
		"'a.nc' 'http://example.com/a.nc' 'SHA256' 'abc'",
		"'b.nc' 'http://example.com/b.nc' '' ''",
	))
	if code := runInspect([]string{"-script", path}); code != ExitSuccess {
		t.Errorf("runInspect() = %d, want %d", code, ExitSuccess)
	}
}

func TestFetchMissingScriptFlag(t *testing.T) {
	if code := runFetch(nil); code != ExitInvalidArgs {
		t.Errorf("runFetch() = %d, want %d", code, ExitInvalidArgs)
	}
}

func TestFetchEndToEnd(t *testing.T) {
	files := map[string][]byte{
		"a.nc": []byte("cli payload a"),
		"b.nc": []byte("cli payload b"),
	}
	server := testutils.StartFileServer(t, files)
	defer server.Close()

	path := writeScript(t, testutils.BuildScript(
		testutils.EntryLine(server, "a.nc", files["a.nc"]),
		testutils.EntryLine(server, "b.nc", files["b.nc"]),
	))

	workdir := filepath.Join(t.TempDir(), "out")
	code := runFetch([]string{"-script", path, "-workdir", workdir, "-concurrency", "2"})
	if code != ExitSuccess {
		t.Fatalf("runFetch() = %d, want %d", code, ExitSuccess)
	}

	zr, err := zip.OpenReader(filepath.Join(workdir, "nc_bundle.zip"))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 2 {
		t.Errorf("archive members = %d, want 2", len(zr.File))
	}
}

func TestFetchChecksumFailure(t *testing.T) {
	server := testutils.StartFileServer(t, map[string][]byte{"a.nc": []byte("served")})
	defer server.Close()

	path := writeScript(t, testutils.BuildScript(
		"'a.nc' '"+server.URL+"/a.nc' 'sha256' '"+testutils.SHA256Hex([]byte("declared"))+"'",
	))

	code := runFetch([]string{"-script", path, "-workdir", filepath.Join(t.TempDir(), "out")})
	if code != ExitFetchFailed {
		t.Errorf("runFetch() = %d, want %d", code, ExitFetchFailed)
	}
}

func TestServeBadConfigFile(t *testing.T) {
	code := runServe([]string{"-config", filepath.Join(t.TempDir(), "absent.yaml")})
	if code != ExitConfigError {
		t.Errorf("runServe() = %d, want %d", code, ExitConfigError)
	}
}
