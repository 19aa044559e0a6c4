package ocr

import (
	"context"
	"errors"
	"fmt"

	"github.com/ironsheep/tilecode/internal/imaging"
)

// ErrEngineFailure is matched by every error that comes out of the
// recognition engine: crashes, unreadable images and timeouts.
var ErrEngineFailure = errors.New("recognition engine failure")

// Default engine settings for identifier codes.
const (
	// DefaultWhitelist restricts recognition to digits, the letter A and the
	// separator, which suppresses most misreads on stamped codes.
	DefaultWhitelist = "0123456789A-"

	// DefaultPageSegMode treats each tile as a single uniform block of text.
	DefaultPageSegMode = 6

	// DefaultLanguage is the Tesseract language code used when none is set.
	DefaultLanguage = "eng"
)

// Options is the per-call engine configuration.
type Options struct {
	Whitelist   string   `json:"whitelist" mapstructure:"whitelist" yaml:"whitelist"`
	Languages   []string `json:"languages" mapstructure:"languages" yaml:"languages"`
	PageSegMode int      `json:"page_seg_mode" mapstructure:"page_seg_mode" yaml:"page_seg_mode"`
}

// DefaultOptions returns the restricted-alphabet configuration.
func DefaultOptions() Options {
	return Options{
		Whitelist:   DefaultWhitelist,
		Languages:   []string{DefaultLanguage},
		PageSegMode: DefaultPageSegMode,
	}
}

// Token is one recognized word and its confidence on a 0-100 scale.
type Token struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Recognition is what an engine returns for one image.
type Recognition struct {
	Text   string  `json:"text"`
	Tokens []Token `json:"tokens"`
}

// MeanConfidence is the arithmetic mean of the token confidences, or 0 when
// the engine reported no tokens.
func (r *Recognition) MeanConfidence() float64 {
	if r == nil || len(r.Tokens) == 0 {
		return 0
	}
	var sum float64
	for _, t := range r.Tokens {
		sum += t.Confidence
	}
	return sum / float64(len(r.Tokens))
}

// Engine recognizes text in a PNG-encoded image.
//
// Implementations must be safe for concurrent use; the section worker pool
// calls Recognize from several goroutines at once.
type Engine interface {
	Recognize(ctx context.Context, png []byte, opts Options) (*Recognition, error)
	Name() string
}

// EngineError describes a failed recognition of one tile.
type EngineError struct {
	Tile     imaging.Tile
	Attempts uint
	Cause    error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s failed after %d attempt(s): %v", ErrEngineFailure, e.Tile.Name(), e.Attempts, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// Is reports ErrEngineFailure as a match so callers can use errors.Is.
func (e *EngineError) Is(target error) bool {
	return target == ErrEngineFailure
}
