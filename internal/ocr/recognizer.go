package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/ironsheep/tilecode/internal/imaging"
)

var errTimeout = errors.New("recognition timed out")

// RecognizerConfig configures a Recognizer.
type RecognizerConfig struct {
	Engine  Engine
	Options Options

	// Grayscale converts each tile before it is sent to the engine.
	Grayscale bool

	// Timeout bounds a single engine call. Zero disables the bound.
	Timeout time.Duration

	// Attempts is the number of engine calls per tile. Timeouts are not retried.
	Attempts   uint
	RetryDelay time.Duration

	Logger *slog.Logger
}

// Result is the recognition of one tile.
type Result struct {
	Tile           imaging.Tile `json:"tile"`
	RawText        string       `json:"raw_text"`
	MeanConfidence float64      `json:"mean_confidence"`
	Tokens         []Token      `json:"tokens,omitempty"`

	// Image is the tile as it was submitted to the engine.
	Image image.Image `json:"-"`
}

// Recognizer crops tiles and runs them through an Engine.
type Recognizer struct {
	engine    Engine
	opts      Options
	grayscale bool
	timeout   time.Duration
	attempts  uint
	delay     time.Duration
	logger    *slog.Logger
}

// NewRecognizer creates a Recognizer from cfg.
func NewRecognizer(cfg RecognizerConfig) *Recognizer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attempts := cfg.Attempts
	if attempts == 0 {
		attempts = 1
	}
	return &Recognizer{
		engine:    cfg.Engine,
		opts:      cfg.Options,
		grayscale: cfg.Grayscale,
		timeout:   cfg.Timeout,
		attempts:  attempts,
		delay:     cfg.RetryDelay,
		logger:    logger.With("engine", cfg.Engine.Name()),
	}
}

// RecognizeTile crops tile out of img and recognizes it.
//
// Any failure, including a crop outside the image, is returned as an
// *EngineError. Callers treat such a tile as contributing no candidate.
func (r *Recognizer) RecognizeTile(ctx context.Context, img image.Image, tile imaging.Tile) (*Result, error) {
	cropped, err := imaging.CropTile(img, tile)
	if err != nil {
		return nil, &EngineError{Tile: tile, Cause: err}
	}

	var submitted image.Image = cropped
	if r.grayscale {
		submitted = imaging.Grayscale(cropped)
	}

	data, err := imaging.EncodePNG(submitted)
	if err != nil {
		return nil, &EngineError{Tile: tile, Cause: err}
	}

	var (
		rec   *Recognition
		calls uint
	)
	err = retry.Do(
		func() error {
			calls++
			var callErr error
			rec, callErr = r.call(ctx, data)
			if errors.Is(callErr, errTimeout) {
				return retry.Unrecoverable(callErr)
			}
			return callErr
		},
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Debug("retrying recognition", "tile", tile.Name(), "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		r.logger.Warn("recognition failed", "tile", tile.Name(), "attempts", calls, "error", err)
		return nil, &EngineError{Tile: tile, Attempts: calls, Cause: err}
	}

	res := &Result{
		Tile:           tile,
		RawText:        rec.Text,
		MeanConfidence: rec.MeanConfidence(),
		Tokens:         rec.Tokens,
		Image:          submitted,
	}
	r.logger.Debug("tile recognized", "tile", tile.Name(), "confidence", res.MeanConfidence, "tokens", len(res.Tokens))
	return res, nil
}

// call runs one engine call under the configured timeout. The engine
// goroutine is abandoned on timeout; it finishes in the background.
func (r *Recognizer) call(ctx context.Context, data []byte) (*Recognition, error) {
	if r.timeout <= 0 {
		return r.recognize(ctx, data)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type reply struct {
		rec *Recognition
		err error
	}
	done := make(chan reply, 1)
	go func() {
		rec, err := r.recognize(ctx, data)
		done <- reply{rec: rec, err: err}
	}()

	select {
	case out := <-done:
		return out.rec, out.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", errTimeout, r.timeout)
		}
		return nil, ctx.Err()
	}
}

// recognize calls the engine once. A panic in the engine is returned as an
// error.
func (r *Recognizer) recognize(ctx context.Context, data []byte) (rec *Recognition, err error) {
	defer func() {
		if p := recover(); p != nil {
			rec, err = nil, fmt.Errorf("engine panic: %v", p)
		}
	}()

	rec, err = r.engine.Recognize(ctx, data, r.opts)
	if err == nil && rec == nil {
		rec = &Recognition{}
	}
	return rec, err
}
