//go:build !cgo

package ocr

import (
	"context"
	"errors"
)

var errNoCgo = errors.New("tesseract support requires a cgo build")

// Tesseract is unavailable without cgo; every call fails.
type Tesseract struct{}

// NewTesseract creates the stub engine.
func NewTesseract(string) *Tesseract {
	return &Tesseract{}
}

// Name identifies the backend in logs and reports.
func (t *Tesseract) Name() string {
	return "tesseract"
}

// Recognize always fails.
func (t *Tesseract) Recognize(context.Context, []byte, Options) (*Recognition, error) {
	return nil, errNoCgo
}

// Version reports that no engine is linked.
func (t *Tesseract) Version() string {
	return "unavailable (built without cgo)"
}
