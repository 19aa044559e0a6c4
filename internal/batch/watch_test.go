package batch

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ironsheep/tilecode/internal/pipeline"
	"github.com/ironsheep/tilecode/internal/report"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestRunner_Watch(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "Scan_0001.tif"))

	proc := &fakeProcessor{outcomes: map[string]pipeline.Outcome{
		"Scan_0002.tif": {Status: pipeline.Success, Code: "12-345678-90-1", Occurrences: 1, Pass: 1},
	}}
	r := NewRunner(RunnerConfig{Processor: proc})
	run := report.NewRun(false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- r.Watch(ctx, dir, 50*time.Millisecond, run)
	}()

	// The existing document is scanned first.
	if !waitFor(t, 5*time.Second, func() bool { return exists(filepath.Join(dir, "Scan_0001_needs-review.tif")) }) {
		cancel()
		t.Fatal("existing document was not processed")
	}

	touch(t, filepath.Join(dir, "Scan_0002.tif"))
	if !waitFor(t, 5*time.Second, func() bool { return exists(filepath.Join(dir, "12-345678-90-1_verified.tif")) }) {
		cancel()
		t.Fatal("dropped document was not processed")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}

	// Renamed outputs are not scanned again.
	seen := proc.seenNames()
	if len(seen) != 2 {
		t.Errorf("processed: got %v, want two documents", seen)
	}
}

func TestRunner_WatchMissingDir(t *testing.T) {
	r := NewRunner(RunnerConfig{Processor: &fakeProcessor{}})
	err := r.Watch(context.Background(), "/nonexistent/drop", time.Second, report.NewRun(false))
	if err == nil {
		t.Error("expected error for missing directory")
	}
}
