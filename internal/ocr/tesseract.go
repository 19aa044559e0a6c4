//go:build cgo

package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract is the gosseract-backed Engine.
//
// A new client is created for every call. gosseract clients are not safe for
// concurrent use, and tiles are recognized in parallel.
type Tesseract struct {
	tessdataPrefix string
}

// NewTesseract creates the engine. An empty tessdataPrefix uses the
// system Tesseract data directory.
func NewTesseract(tessdataPrefix string) *Tesseract {
	return &Tesseract{tessdataPrefix: tessdataPrefix}
}

// Name identifies the backend in logs and reports.
func (t *Tesseract) Name() string {
	return "tesseract"
}

// Recognize runs Tesseract on a PNG image.
func (t *Tesseract) Recognize(ctx context.Context, png []byte, opts Options) (*Recognition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.tessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	langs := opts.Languages
	if len(langs) == 0 {
		langs = []string{DefaultLanguage}
	}
	if err := client.SetLanguage(langs...); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	if opts.PageSegMode > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(opts.PageSegMode)); err != nil {
			return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
		}
	}

	if opts.Whitelist != "" {
		if err := client.SetWhitelist(opts.Whitelist); err != nil {
			return nil, fmt.Errorf("failed to set whitelist: %w", err)
		}
	}

	if err := client.SetImageFromBytes(png); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	// Word boxes only carry confidences. A failure here leaves the text usable
	// with zero confidence, which the aggregator filters out.
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	tokens := make([]Token, 0, len(boxes))
	if err == nil {
		for _, box := range boxes {
			word := strings.TrimSpace(box.Word)
			if word == "" {
				continue
			}
			tokens = append(tokens, Token{
				Text:       word,
				Confidence: float64(box.Confidence),
			})
		}
	}

	return &Recognition{Text: text, Tokens: tokens}, nil
}

// Version returns the linked Tesseract version.
func (t *Tesseract) Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}
