package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/tilecode/internal/extract"
	"github.com/ironsheep/tilecode/internal/imaging"
	"github.com/ironsheep/tilecode/internal/ocr"
)

// TileRecognizer recognizes one tile of a page. *ocr.Recognizer implements it.
type TileRecognizer interface {
	RecognizeTile(ctx context.Context, img image.Image, tile imaging.Tile) (*ocr.Result, error)
}

// TileResult is the outcome of recognition and extraction for one tile.
type TileResult struct {
	Index          int                `json:"index"`
	Tile           imaging.Tile       `json:"tile"`
	RawText        string             `json:"raw_text"`
	CleanText      string             `json:"clean_text"`
	MeanConfidence float64            `json:"mean_confidence"`
	Candidate      *extract.Candidate `json:"candidate,omitempty"`

	// Err is set when the engine failed on this tile.
	Err error `json:"-"`

	// Image is the tile as submitted to the engine; nil on failure.
	Image image.Image `json:"-"`
}

// SectionPool runs recognition and extraction over every tile of a plan.
type SectionPool struct {
	recognizer TileRecognizer
	extractor  *extract.Extractor
	workers    int
	logger     *slog.Logger
}

// NewSectionPool creates a pool. workers <= 0 uses runtime.NumCPU().
func NewSectionPool(recognizer TileRecognizer, extractor *extract.Extractor, workers int, logger *slog.Logger) *SectionPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SectionPool{
		recognizer: recognizer,
		extractor:  extractor,
		workers:    workers,
		logger:     logger,
	}
}

// ProcessTiles recognizes all tiles of plan and returns one result per tile
// in plan order. It returns once every tile has finished.
//
// img is shared read-only by the workers. Each worker writes only its own
// slot of the result slice. Engine failures and panics stay inside that slot.
func (p *SectionPool) ProcessTiles(ctx context.Context, img image.Image, plan *imaging.Plan) []TileResult {
	results := make([]TileResult, plan.Len())

	var g errgroup.Group
	g.SetLimit(p.workers)

	for i, tile := range plan.Tiles {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Error("tile recognition panicked", "tile", tile.Name(), "panic", r)
					results[i] = TileResult{
						Index: i,
						Tile:  tile,
						Err:   &ocr.EngineError{Tile: tile, Cause: fmt.Errorf("panic: %v", r)},
					}
				}
			}()
			results[i] = p.processTile(ctx, img, i, tile)
			return nil
		})
	}

	_ = g.Wait()
	return results
}

func (p *SectionPool) processTile(ctx context.Context, img image.Image, index int, tile imaging.Tile) TileResult {
	out := TileResult{Index: index, Tile: tile}

	res, err := p.recognizer.RecognizeTile(ctx, img, tile)
	if err != nil {
		out.Err = err
		return out
	}

	out.RawText = res.RawText
	out.MeanConfidence = res.MeanConfidence
	out.Image = res.Image
	out.CleanText = p.extractor.Clean(res.RawText)

	if c, ok := p.extractor.Extract(res.RawText); ok {
		out.Candidate = &c
		p.logger.Debug("candidate found", "tile", tile.Name(), "code", c.Code, "confidence", res.MeanConfidence)
	}
	return out
}
