package app

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ironsheep/tilecode/internal/config"
	"github.com/ironsheep/tilecode/internal/ocr"
	"github.com/ironsheep/tilecode/internal/report"
)

type fakeEngine struct {
	mu    sync.Mutex
	text  string
	conf  float64
	calls int
}

func (f *fakeEngine) Recognize(_ context.Context, _ []byte, _ ocr.Options) (*ocr.Recognition, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return &ocr.Recognition{
		Text:   f.text,
		Tokens: []ocr.Token{{Text: f.text, Confidence: f.conf}},
	}, nil
}

func (f *fakeEngine) Name() string { return "fake" }

func writePage(t *testing.T, path string) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 120, 80))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	img.SetGray(10, 10, color.Gray{Y: 0})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func testConfig(dir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Batch.Extensions = []string{".png"}
	cfg.Diagnostics.Enabled = true
	cfg.Diagnostics.Root = filepath.Join(dir, "diag")
	cfg.Recognition.RetryDelay = 0
	return cfg
}

func quietLogger() *slog.Logger {
	return NewLogger(io.Discard, slog.LevelError)
}

func TestNew_ScanRenamesAndReports(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "Scan_0001.png")
	writePage(t, page)

	engine := &fakeEngine{text: "12-345678|90|1", conf: 90}
	a, err := New(testConfig(dir), engine, quietLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	run := a.NewRun()
	if err := a.Runner.Run(context.Background(), []string{dir}, run); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := a.FinishRun(run, dir); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	renamed := filepath.Join(dir, "12-345678-90-1_verified.png")
	if _, err := os.Stat(renamed); err != nil {
		t.Errorf("expected %s: %v", renamed, err)
	}
	if engine.calls == 0 {
		t.Error("engine was never called")
	}

	got, err := report.ReadRun(filepath.Join(dir, "tilecode-report.yaml"))
	if err != nil {
		t.Fatalf("ReadRun failed: %v", err)
	}
	if got.Summary.Success != 1 || got.Summary.Total != 1 {
		t.Errorf("summary: got %+v, want 1 success of 1", got.Summary)
	}

	if _, err := os.Stat(filepath.Join(dir, "diag", "results", "Scan_0001", "pass1", "OCR_Results.md")); err != nil {
		t.Errorf("expected diagnostics: %v", err)
	}
}

func TestNew_DryRunLeavesFiles(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "Scan_0002.png")
	writePage(t, page)

	cfg := testConfig(dir)
	cfg.Rename.DryRun = true
	cfg.Diagnostics.Enabled = false
	cfg.Batch.Report = false

	a, err := New(cfg, &fakeEngine{text: "nothing here", conf: 90}, quietLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if a.Diagnostics != nil {
		t.Error("diagnostics built while disabled")
	}

	run := a.NewRun()
	if err := a.Runner.Run(context.Background(), []string{page}, run); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := a.FinishRun(run, dir); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	if _, err := os.Stat(page); err != nil {
		t.Errorf("dry run moved the document: %v", err)
	}
	if run.Summary.NoMatch != 1 {
		t.Errorf("no_match: got %d, want 1", run.Summary.NoMatch)
	}
	if len(run.Documents) != 1 || filepath.Base(run.Documents[0].NewPath) != "Scan_0002_needs-review.png" {
		t.Errorf("documents: got %+v, want planned review name", run.Documents)
	}
	if _, err := os.Stat(filepath.Join(dir, "tilecode-report.yaml")); !os.IsNotExist(err) {
		t.Errorf("report written while disabled: %v", err)
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Extraction.Patterns = []string{"("}
	if _, err := New(cfg, &fakeEngine{}, quietLogger()); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestReportPath(t *testing.T) {
	cfg := config.DefaultConfig()
	a, err := New(cfg, &fakeEngine{}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if got := a.ReportPath("/scans"); got != filepath.Join("/scans", "tilecode-report.yaml") {
		t.Errorf("got %s, want /scans/tilecode-report.yaml", got)
	}
	cfg.Batch.Report = false
	if got := a.ReportPath("/scans"); got != "" {
		t.Errorf("got %q, want empty when disabled", got)
	}
}
