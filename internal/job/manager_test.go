package job

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "gocloud.dev/blob/fileblob"

	"github.com/LiTL0529/fuxi/internal/manifest"
	"github.com/LiTL0529/fuxi/internal/testutils"
)

// waitForJob polls the manager until the job reaches a terminal state.
func waitForJob(t *testing.T, m *Manager, id string) Job {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		j, ok := m.Get(id)
		if !ok {
			t.Fatalf("job %s disappeared", id)
		}
		if j.Status.IsFinished() {
			return j
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish in time", id)
	return Job{}
}

func TestManagerLifecycle(t *testing.T) {
	files := map[string][]byte{
		"a.nc": []byte("content a"),
		"b.nc": []byte("content b"),
	}
	server := testutils.StartFileServer(t, files)
	defer server.Close()

	script := testutils.BuildScript(
		testutils.EntryLine(server, "a.nc", files["a.nc"]),
		testutils.EntryLine(server, "b.nc", files["b.nc"]),
	)

	m := NewManager(Options{WorkDir: t.TempDir()})

	j, err := m.Submit("cmip6-test.sh", []byte(script))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if j.Total != 2 {
		t.Errorf("Total = %d, want 2", j.Total)
	}
	if j.Status != StatusPending && j.Status != StatusRunning {
		t.Errorf("initial status = %s", j.Status)
	}

	// The uploaded script is stored alongside the downloads.
	if _, err := os.Stat(filepath.Join(j.Dir, "cmip6-test.sh")); err != nil {
		t.Errorf("stored script copy: %v", err)
	}

	final := waitForJob(t, m, j.ID)
	if final.Status != StatusCompleted {
		t.Fatalf("status = %s (%s), want completed", final.Status, final.Message)
	}
	if final.Completed != 2 {
		t.Errorf("Completed = %d, want 2", final.Completed)
	}
	if _, err := os.Stat(final.ArchivePath); err != nil {
		t.Errorf("archive missing: %v", err)
	}

	snap := final.Snapshot()
	if snap.JobID != j.ID || snap.Total != 2 || snap.Completed != 2 {
		t.Errorf("snapshot = %+v", snap)
	}
}

// TestSubmitCopyIndependentOfRun submits a stream of jobs while their
// pipelines run in the background. The copy returned by Submit must be taken
// before the pipeline goroutine starts mutating the record; under the race
// detector any unsynchronized read in Submit shows up here.
func TestSubmitCopyIndependentOfRun(t *testing.T) {
	files := map[string][]byte{"a.nc": []byte("racy")}
	server := testutils.StartFileServer(t, files)
	defer server.Close()

	script := testutils.BuildScript(testutils.EntryLine(server, "a.nc", files["a.nc"]))

	m := NewManager(Options{WorkDir: t.TempDir()})

	var ids []string
	for i := 0; i < 50; i++ {
		j, err := m.Submit("racy.sh", []byte(script))
		if err != nil {
			t.Fatalf("Submit #%d: %v", i, err)
		}
		time.Sleep(5 * time.Millisecond)

		// The returned copy reflects the record as submitted, regardless
		// of how far the background run has progressed since.
		if j.Status != StatusPending {
			t.Errorf("Submit #%d returned status %s, want pending", i, j.Status)
		}
		if j.Total != 1 || j.Completed != 0 {
			t.Errorf("Submit #%d returned progress %d/%d, want 0/1", i, j.Completed, j.Total)
		}
		ids = append(ids, j.ID)
	}

	for _, id := range ids {
		waitForJob(t, m, id)
	}
}

func TestManagerSubmitBadScript(t *testing.T) {
	m := NewManager(Options{WorkDir: t.TempDir()})
	_, err := m.Submit("bad.sh", []byte("no block here"))
	if !errors.Is(err, manifest.ErrBlockNotFound) {
		t.Errorf("expected ErrBlockNotFound, got %v", err)
	}
}

func TestManagerFailureRemovesDir(t *testing.T) {
	server := testutils.StartFileServer(t, map[string][]byte{"a.nc": []byte("actual")})
	defer server.Close()

	// Declared checksum does not match the served bytes.
	script := testutils.BuildScript(
		"'a.nc' '" + server.URL + "/a.nc' 'sha256' '" + testutils.SHA256Hex([]byte("other")) + "'",
	)

	m := NewManager(Options{WorkDir: t.TempDir()})
	j, err := m.Submit("bad-checksum.sh", []byte(script))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	final := waitForJob(t, m, j.ID)
	if final.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", final.Status)
	}
	if final.Message == "" {
		t.Error("expected failure message")
	}

	// The working directory is discarded on failure; the record stays. The
	// removal runs just after the status flips, so allow a moment.
	removalDeadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(j.Dir); os.IsNotExist(err) {
			break
		}
		if time.Now().After(removalDeadline) {
			t.Error("expected job dir to be removed after failure")
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if _, ok := m.Get(j.ID); !ok {
		t.Error("expected failed job record to remain")
	}
}

func TestManagerRemove(t *testing.T) {
	files := map[string][]byte{"a.nc": []byte("x")}
	server := testutils.StartFileServer(t, files)
	defer server.Close()

	script := testutils.BuildScript(testutils.EntryLine(server, "a.nc", files["a.nc"]))

	m := NewManager(Options{WorkDir: t.TempDir()})
	j, err := m.Submit("one.sh", []byte(script))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitForJob(t, m, j.ID)

	m.Remove(j.ID)
	if _, ok := m.Get(j.ID); ok {
		t.Error("expected job record to be gone")
	}
	if _, err := os.Stat(j.Dir); !os.IsNotExist(err) {
		t.Error("expected job dir to be removed")
	}
}

func TestManagerPublish(t *testing.T) {
	files := map[string][]byte{"a.nc": []byte("publish me")}
	server := testutils.StartFileServer(t, files)
	defer server.Close()

	script := testutils.BuildScript(testutils.EntryLine(server, "a.nc", files["a.nc"]))

	publishDir := t.TempDir()
	m := NewManager(Options{
		WorkDir:       t.TempDir(),
		PublishBucket: "file://" + publishDir,
	})

	j, err := m.Submit("pub.sh", []byte(script))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	final := waitForJob(t, m, j.ID)
	if final.Status != StatusCompleted {
		t.Fatalf("status = %s (%s), want completed", final.Status, final.Message)
	}

	// The archive was copied into the bucket under <job-id>.zip.
	if _, err := os.Stat(filepath.Join(publishDir, j.ID+".zip")); err != nil {
		t.Errorf("published archive missing: %v", err)
	}
}

func TestManagerPublishFailureFailsJob(t *testing.T) {
	files := map[string][]byte{"a.nc": []byte("x")}
	server := testutils.StartFileServer(t, files)
	defer server.Close()

	script := testutils.BuildScript(testutils.EntryLine(server, "a.nc", files["a.nc"]))

	m := NewManager(Options{
		WorkDir:       t.TempDir(),
		PublishBucket: "bogus-scheme://nowhere",
	})

	j, err := m.Submit("pub.sh", []byte(script))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	final := waitForJob(t, m, j.ID)
	if final.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", final.Status)
	}
}
