package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ironsheep/tilecode/internal/pipeline"
	"github.com/ironsheep/tilecode/internal/report"
)

// DefaultExtensions are the document types scanned when none are configured.
var DefaultExtensions = []string{".tif", ".tiff"}

// Processor scans one document. *pipeline.Pipeline implements it.
type Processor interface {
	Process(ctx context.Context, path, expectedPrefix string) (*pipeline.Result, error)
}

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	Processor Processor
	Renamer   Renamer

	// Extensions are matched case-insensitively, including the dot.
	Extensions []string

	// DirectoryHint derives the expected code prefix from the directory
	// two levels above each document.
	DirectoryHint bool

	Logger *slog.Logger
}

// Runner scans documents one at a time and renames them.
type Runner struct {
	processor  Processor
	renamer    Renamer
	extensions map[string]bool
	hint       bool
	logger     *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = true
	}
	renamer := cfg.Renamer
	if renamer.VerifiedSuffix == "" {
		renamer.VerifiedSuffix = DefaultVerifiedSuffix
	}
	if renamer.ReviewSuffix == "" {
		renamer.ReviewSuffix = DefaultReviewSuffix
	}
	if renamer.claimed == nil {
		renamer.claimed = newClaimSet()
	}
	return &Runner{
		processor:  cfg.Processor,
		renamer:    renamer,
		extensions: set,
		hint:       cfg.DirectoryHint,
		logger:     logger,
	}
}

// Eligible reports whether path should be scanned: it has a configured
// extension and was not already set aside for review.
func (r *Runner) Eligible(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if !r.extensions[strings.ToLower(filepath.Ext(base))] {
		return false
	}
	return !r.renamer.IsReview(base)
}

// Collect expands paths into the sorted list of eligible documents.
// Directories contribute their direct entries; files are taken as given if
// eligible.
func (r *Runner) Collect(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	add := func(p string) {
		if r.Eligible(p) && !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", p, err)
		}
		for _, e := range entries {
			if e.Type().IsRegular() {
				add(filepath.Join(p, e.Name()))
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// Run scans every document in paths, in sorted order, and records each in
// run. Cancellation is checked between documents only; a document that has
// started is always finished and renamed. The context error is returned
// when the run stopped early.
func (r *Runner) Run(ctx context.Context, paths []string, run *report.Run) error {
	files, err := r.Collect(paths)
	if err != nil {
		return err
	}
	r.logger.Info("scan started", "run", run.ID, "documents", len(files), "dry_run", r.renamer.DryRun)

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("scan cancelled", "run", run.ID, "processed", i, "remaining", len(files)-i)
			return err
		}
		r.ProcessFile(ctx, path, run)
	}

	r.logger.Info("scan finished", "run", run.ID,
		"success", run.Summary.Success,
		"no_match", run.Summary.NoMatch,
		"already_processed", run.Summary.AlreadyProcessed,
		"errors", run.Summary.Errors)
	return nil
}

// process runs the processor, turning a panic into a document failure.
func (r *Runner) process(ctx context.Context, path, prefix string) (res *pipeline.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			res = nil
			err = &pipeline.DocumentError{Path: path, State: pipeline.Pending, Cause: fmt.Errorf("panic: %v", p)}
		}
	}()
	return r.processor.Process(context.WithoutCancel(ctx), path, prefix)
}

// ProcessFile scans and renames one document. Failures are recorded as
// NoMatch and the document is set aside for review.
func (r *Runner) ProcessFile(ctx context.Context, path string, run *report.Run) report.DocumentEntry {
	start := time.Now()
	logger := r.logger.With("document", path)

	var prefix string
	if r.hint {
		if p, ok := ExpectedPrefix(path); ok {
			prefix = p
			logger.Debug("expected prefix from directory", "prefix", prefix)
		}
	}

	res, docErr := r.process(ctx, path, prefix)

	outcome := pipeline.Outcome{Status: pipeline.NoMatch}
	if docErr != nil {
		logger.Error("document failed", "error", docErr)
	} else {
		outcome = res.Outcome
	}

	newPath, err := r.renamer.Rename(path, outcome)
	if err != nil {
		logger.Error("rename failed", "error", err)
		if docErr == nil {
			docErr = err
		}
		newPath = ""
	} else if newPath == path {
		newPath = ""
	}

	entry := run.Add(path, newPath, prefix, res, docErr, time.Since(start))
	logger.Info("document done", "status", entry.Status, "code", entry.Code, "new_path", entry.NewPath)
	return entry
}
