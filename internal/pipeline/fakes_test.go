package pipeline

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/ironsheep/tilecode/internal/imaging"
	"github.com/ironsheep/tilecode/internal/ocr"
)

// reply is a canned recognition.
type reply struct {
	text string
	conf float64
	err  error
}

// fakeRecognizer answers by page width and tile position, so the plain and
// enhanced passes can be scripted separately.
type fakeRecognizer struct {
	mu      sync.Mutex
	calls   int
	byWidth map[int]int
	respond func(img image.Image, tile imaging.Tile) reply
}

func newFakeRecognizer(respond func(img image.Image, tile imaging.Tile) reply) *fakeRecognizer {
	return &fakeRecognizer{byWidth: make(map[int]int), respond: respond}
}

func (f *fakeRecognizer) RecognizeTile(ctx context.Context, img image.Image, tile imaging.Tile) (*ocr.Result, error) {
	f.mu.Lock()
	f.calls++
	f.byWidth[img.Bounds().Dx()]++
	f.mu.Unlock()

	r := f.respond(img, tile)
	if r.err != nil {
		return nil, &ocr.EngineError{Tile: tile, Attempts: 1, Cause: r.err}
	}
	return &ocr.Result{Tile: tile, RawText: r.text, MeanConfidence: r.conf}, nil
}

func (f *fakeRecognizer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeRecognizer) callsForWidth(w int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byWidth[w]
}

// doublingEnhancer returns a blank page twice the size of its input.
type doublingEnhancer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (e *doublingEnhancer) Enhance(ctx context.Context, img image.Image) (image.Image, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	b := img.Bounds()
	return image.NewGray(image.Rect(0, 0, b.Dx()*2, b.Dy()*2)), nil
}

// memoryRecorder keeps recorded passes.
type memoryRecorder struct {
	mu     sync.Mutex
	passes []int
	err    error
}

func (r *memoryRecorder) RecordPass(path string, pass *Pass) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.passes = append(r.passes, pass.Number)
	return r.err
}

var errEngineCrashed = errors.New("engine crashed")
