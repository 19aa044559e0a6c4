package app

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/ironsheep/tilecode/internal/batch"
	"github.com/ironsheep/tilecode/internal/config"
	"github.com/ironsheep/tilecode/internal/extract"
	"github.com/ironsheep/tilecode/internal/imaging"
	"github.com/ironsheep/tilecode/internal/ocr"
	"github.com/ironsheep/tilecode/internal/pipeline"
	"github.com/ironsheep/tilecode/internal/report"
)

// App holds the components built from one Config.
type App struct {
	Config      *config.Config
	Engine      ocr.Engine
	Extractor   *extract.Extractor
	Recognizer  *ocr.Recognizer
	Diagnostics *report.Diagnostics
	Pipeline    *pipeline.Pipeline
	Renamer     batch.Renamer
	Runner      *batch.Runner
	Logger      *slog.Logger
}

// New builds every component from cfg around engine.
func New(cfg *config.Config, engine ocr.Engine, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ext, err := extract.New(cfg.Extraction.Patterns, cfg.Extraction.StripSpaces)
	if err != nil {
		return nil, fmt.Errorf("failed to build extractor: %w", err)
	}

	rec := ocr.NewRecognizer(ocr.RecognizerConfig{
		Engine:     engine,
		Options:    cfg.OCROptions(),
		Grayscale:  cfg.Recognition.Grayscale,
		Timeout:    cfg.Recognition.Timeout,
		Attempts:   cfg.Recognition.Attempts,
		RetryDelay: cfg.Recognition.RetryDelay,
		Logger:     logger,
	})

	var diag *report.Diagnostics
	pcfg := pipeline.Config{
		Tiling:              cfg.TilingParams(),
		ConfidenceThreshold: cfg.Aggregation.ConfidenceThreshold,
		Escalate:            cfg.Escalation.Enabled,
		Workers:             cfg.Tiling.Workers,
		Recognizer:          rec,
		Extractor:           ext,
		Enhancer:            imaging.NewEnhancer(cfg.EnhanceOptions()),
		Logger:              logger,
	}
	if cfg.Diagnostics.Enabled {
		diag = report.NewDiagnostics(report.DiagnosticsConfig{
			Root:    cfg.Diagnostics.Root,
			Tiles:   cfg.Diagnostics.Tiles,
			Overlay: cfg.Diagnostics.Overlay,
			Logger:  logger,
		})
		pcfg.Recorder = diag
	}
	pl := pipeline.New(pcfg)

	renamer := batch.Renamer{
		VerifiedSuffix: cfg.Rename.VerifiedSuffix,
		ReviewSuffix:   cfg.Rename.ReviewSuffix,
		DryRun:         cfg.Rename.DryRun,
	}

	runner := batch.NewRunner(batch.RunnerConfig{
		Processor:     pl,
		Renamer:       renamer,
		Extensions:    cfg.Batch.Extensions,
		DirectoryHint: cfg.Aggregation.DirectoryHint,
		Logger:        logger,
	})

	return &App{
		Config:      cfg,
		Engine:      engine,
		Extractor:   ext,
		Recognizer:  rec,
		Diagnostics: diag,
		Pipeline:    pl,
		Renamer:     renamer,
		Runner:      runner,
		Logger:      logger,
	}, nil
}

// NewRun starts a run report for this configuration.
func (a *App) NewRun() *report.Run {
	return report.NewRun(a.Config.Rename.DryRun)
}

// ReportPath returns where the run report for a scan of dir is written, or
// "" when reports are disabled.
func (a *App) ReportPath(dir string) string {
	if !a.Config.Batch.Report {
		return ""
	}
	return filepath.Join(dir, a.Config.Batch.ReportName)
}

// FinishRun closes run and writes it next to the scanned documents.
func (a *App) FinishRun(run *report.Run, dir string) error {
	run.Finish()
	path := a.ReportPath(dir)
	if path == "" {
		return nil
	}
	if err := run.Write(path); err != nil {
		return err
	}
	a.Logger.Info("run report written", "path", path, "run", run.ID)
	return nil
}

// NewLogger returns a text logger writing to w at level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
