package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/tilecode/internal/extract"
	"github.com/ironsheep/tilecode/internal/imaging"
)

// Recorder receives every completed pass, for diagnostics.
type Recorder interface {
	RecordPass(documentPath string, pass *Pass) error
}

// Config holds the collaborators and settings of a Pipeline. It is not
// modified after New.
type Config struct {
	Tiling              imaging.TilingParams
	ConfidenceThreshold float64

	// Escalate enables the enhanced second pass.
	Escalate bool

	// Workers bounds the tiles recognized at once. Zero uses every CPU.
	Workers int

	Recognizer TileRecognizer
	Extractor  *extract.Extractor
	Enhancer   Enhancer

	// Recorder is optional.
	Recorder Recorder

	// Load decodes a page; defaults to imaging.Load.
	Load func(path string) (image.Image, error)

	Logger *slog.Logger
}

// Result is what the pipeline reports for one document.
type Result struct {
	ID       string        `json:"id" yaml:"id"`
	Path     string        `json:"path" yaml:"path"`
	Outcome  Outcome       `json:"outcome" yaml:"outcome"`
	States   []State       `json:"states" yaml:"states"`
	Passes   []Pass        `json:"-" yaml:"-"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// DocumentError reports a document that could not be scanned.
type DocumentError struct {
	Path  string
	State State
	Cause error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %s failed in state %s: %v", filepath.Base(e.Path), e.State, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// Pipeline scans one document at a time.
type Pipeline struct {
	scanner   *Scanner
	extractor *extract.Extractor
	params    imaging.TilingParams
	recorder  Recorder
	load      func(string) (image.Image, error)
	logger    *slog.Logger
}

// New creates a Pipeline from cfg.
func New(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	load := cfg.Load
	if load == nil {
		load = imaging.Load
	}
	ext := cfg.Extractor
	if ext == nil {
		ext = extract.Default()
	}
	enhancer := cfg.Enhancer
	if enhancer == nil {
		enhancer = imaging.NewEnhancer(imaging.DefaultEnhanceOptions())
	}

	return &Pipeline{
		scanner: &Scanner{
			pool:      NewSectionPool(cfg.Recognizer, ext, cfg.Workers, logger),
			enhancer:  enhancer,
			params:    cfg.Tiling,
			threshold: cfg.ConfidenceThreshold,
			escalate:  cfg.Escalate,
			logger:    logger,
		},
		extractor: ext,
		params:    cfg.Tiling,
		recorder:  cfg.Recorder,
		load:      load,
		logger:    logger,
	}
}

// Process loads the page at path and scans it. See ProcessImage.
func (p *Pipeline) Process(ctx context.Context, path, expectedPrefix string) (*Result, error) {
	if res, ok := p.guard(path); ok {
		return res, nil
	}

	img, err := p.load(path)
	if err != nil {
		return nil, &DocumentError{Path: path, State: Pending, Cause: err}
	}
	return p.scan(ctx, path, img, expectedPrefix)
}

// ProcessImage scans an already decoded page. path names the document for
// the already-processed check, logging and diagnostics.
//
// Documents whose file name already starts with a code finish immediately
// with AlreadyProcessed. Invalid tiling parameters fail the document before
// any recognition. An empty expectedPrefix disables the prefix check.
func (p *Pipeline) ProcessImage(ctx context.Context, path string, img image.Image, expectedPrefix string) (*Result, error) {
	if res, ok := p.guard(path); ok {
		return res, nil
	}
	return p.scan(ctx, path, img, expectedPrefix)
}

func (p *Pipeline) guard(path string) (*Result, bool) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if !p.extractor.MatchesPrefix(stem) {
		return nil, false
	}
	p.logger.Info("already processed", "document", path)
	return &Result{
		ID:      uuid.NewString(),
		Path:    path,
		Outcome: Outcome{Status: AlreadyProcessed},
		States:  []State{Pending, Done},
	}, true
}

func (p *Pipeline) scan(ctx context.Context, path string, img image.Image, expectedPrefix string) (*Result, error) {
	start := time.Now()
	res := &Result{
		ID:     uuid.NewString(),
		Path:   path,
		States: []State{Pending},
	}
	logger := p.logger.With("document", path, "id", res.ID)
	track := func(s State) {
		res.States = append(res.States, s)
		logger.Debug("state", "state", s.String())
	}

	plan, err := imaging.PlanImage(img, p.params)
	if err != nil {
		return nil, &DocumentError{Path: path, State: Pending, Cause: err}
	}
	track(Planned)
	logger.Debug("page planned", "width", plan.ImageWidth, "height", plan.ImageHeight, "tiles", plan.Len())

	scanner := *p.scanner
	scanner.logger = logger
	outcome, passes, err := scanner.Run(ctx, img, plan, expectedPrefix, track)
	res.Passes = passes
	res.Outcome = outcome

	if p.recorder != nil {
		for i := range passes {
			if rerr := p.recorder.RecordPass(path, &passes[i]); rerr != nil {
				logger.Warn("failed to write diagnostics", "pass", passes[i].Number, "error", rerr)
			}
		}
	}

	if err != nil {
		return res, &DocumentError{Path: path, State: Escalating, Cause: err}
	}

	track(Done)
	res.Duration = time.Since(start)
	logger.Info("document complete", "outcome", outcome.String(), "duration", res.Duration)
	return res, nil
}
