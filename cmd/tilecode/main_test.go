package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestExtractCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, "extract", "Ref:", "12-345678|9O|1")
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !strings.Contains(out, "code:    12-345678-90-1") {
		t.Errorf("output %q does not contain the code", out)
	}
}

func TestInitConfigCommand(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "tilecode.yaml")

	if _, err := execute(t, "init-config", path); err != nil {
		t.Fatalf("init-config failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if _, err := execute(t, "init-config", path); err == nil {
		t.Error("expected error when the file exists")
	}
}

func TestPlanCommand(t *testing.T) {
	dir := isolate(t)
	page := filepath.Join(dir, "page.png")
	overlay := filepath.Join(dir, "grid.png")
	writeBlankPNG(t, page, 100, 50)

	out, err := execute(t, "plan", "--section", "50", "--overlap", "20", "--overlay", overlay, page)
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	if !strings.Contains(out, "16 tiles") {
		t.Errorf("output %q does not report 16 tiles", out)
	}
	if _, err := os.Stat(overlay); err != nil {
		t.Errorf("overlay not written: %v", err)
	}
}

func TestReportDir(t *testing.T) {
	dir := t.TempDir()
	if got := reportDir(dir); got != dir {
		t.Errorf("directory: got %s, want %s", got, dir)
	}
	file := filepath.Join(dir, "a.tif")
	if got := reportDir(file); got != dir {
		t.Errorf("file: got %s, want %s", got, dir)
	}
}
