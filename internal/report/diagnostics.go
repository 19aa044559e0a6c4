package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/tilecode/internal/imaging"
	"github.com/ironsheep/tilecode/internal/pipeline"
)

// ResultsDirName is the directory, next to each document, that holds its
// diagnostics.
const ResultsDirName = "results"

// DiagnosticsConfig selects which artifacts are written.
type DiagnosticsConfig struct {
	// Root replaces the document's own directory as the parent of the
	// results directory when set.
	Root string

	// Tiles writes each tile image and its raw and cleaned text.
	Tiles bool

	// Overlay writes plan.png, the page with the tile grid drawn on it.
	Overlay bool

	// OverlayColor is the tile outline colour as hex.
	OverlayColor string

	Logger *slog.Logger
}

// Diagnostics writes per-pass artifacts under
// results/<document stem>/pass<N>/. It implements pipeline.Recorder.
type Diagnostics struct {
	cfg    DiagnosticsConfig
	logger *slog.Logger
}

// NewDiagnostics creates a Diagnostics writer.
func NewDiagnostics(cfg DiagnosticsConfig) *Diagnostics {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.OverlayColor == "" {
		cfg.OverlayColor = "#FF0000"
	}
	return &Diagnostics{cfg: cfg, logger: logger}
}

// PassDir returns the directory that holds the artifacts of one pass.
func (d *Diagnostics) PassDir(documentPath string, pass int) string {
	parent := d.cfg.Root
	if parent == "" {
		parent = filepath.Dir(documentPath)
	}
	base := filepath.Base(documentPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(parent, ResultsDirName, stem, fmt.Sprintf("pass%d", pass))
}

// RecordPass writes the artifacts of pass. Tiles whose recognition failed
// have no image and no text files.
func (d *Diagnostics) RecordPass(documentPath string, pass *pipeline.Pass) error {
	dir := d.PassDir(documentPath, pass.Number)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create diagnostics directory: %w", err)
	}

	if d.cfg.Tiles {
		for _, r := range pass.Results {
			if r.Err != nil {
				continue
			}
			if err := writeTile(dir, r); err != nil {
				return err
			}
		}
	}

	if d.cfg.Overlay && pass.Image != nil && pass.Plan != nil {
		overlay := imaging.PlanOverlay(pass.Image, pass.Plan, d.cfg.OverlayColor)
		if err := imaging.SavePNG(overlay, filepath.Join(dir, "plan.png")); err != nil {
			return err
		}
	}

	if err := os.WriteFile(filepath.Join(dir, "OCR_Results.md"), []byte(Markdown(documentPath, pass)), 0644); err != nil {
		return fmt.Errorf("failed to write OCR results: %w", err)
	}

	d.logger.Debug("diagnostics written", "document", documentPath, "pass", pass.Number, "dir", dir)
	return nil
}

func writeTile(dir string, r pipeline.TileResult) error {
	name := r.Tile.Name()
	if r.Image != nil {
		if err := imaging.SavePNG(r.Image, filepath.Join(dir, name+".png")); err != nil {
			return err
		}
	}
	if err := os.WriteFile(filepath.Join(dir, name+".txt"), []byte(r.RawText), 0644); err != nil {
		return fmt.Errorf("failed to write %s.txt: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".clean.txt"), []byte(r.CleanText), 0644); err != nil {
		return fmt.Errorf("failed to write %s.clean.txt: %w", name, err)
	}
	return nil
}

// Markdown renders the human-readable report of a pass: a summary followed
// by every tile that produced a candidate.
func Markdown(documentPath string, pass *pipeline.Pass) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# OCR results: %s\n\n", filepath.Base(documentPath))
	kind := "plain"
	if pass.Enhanced {
		kind = "enhanced"
	}
	fmt.Fprintf(&b, "- Pass: %d (%s)\n", pass.Number, kind)
	if pass.Plan != nil {
		fmt.Fprintf(&b, "- Page: %dx%d\n", pass.Plan.ImageWidth, pass.Plan.ImageHeight)
		fmt.Fprintf(&b, "- Tiles: %d (section %dx%d, shift %dx%d)\n",
			pass.Plan.Len(), pass.Plan.SectionWidth, pass.Plan.SectionHeight,
			pass.Plan.ShiftWidth, pass.Plan.ShiftHeight)
	}
	fmt.Fprintf(&b, "- Outcome: %s\n", pass.Outcome)
	b.WriteString("\n")

	found := 0
	for _, r := range pass.Results {
		if r.Candidate == nil {
			continue
		}
		found++
		name := r.Tile.Name()
		fmt.Fprintf(&b, "## %s\n\n", name)
		fmt.Fprintf(&b, "![%s](./%s.png)\n\n", name, name)
		fmt.Fprintf(&b, "Confidence: %.1f\n\n", r.MeanConfidence)
		fmt.Fprintf(&b, "```\n%s\n```\n\n", r.Candidate.Code)
	}
	if found == 0 {
		b.WriteString("No tile produced a candidate.\n")
	}
	return b.String()
}
