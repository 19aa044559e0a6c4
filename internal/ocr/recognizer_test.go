package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/ironsheep/tilecode/internal/imaging"
)

// fakeEngine returns canned recognitions. respond is called with the 1-based
// call number.
type fakeEngine struct {
	mu       sync.Mutex
	calls    int
	lastOpts Options
	lastPNG  []byte
	respond  func(call int) (*Recognition, error)
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(ctx context.Context, data []byte, opts Options) (*Recognition, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.lastOpts = opts
	f.lastPNG = data
	f.mu.Unlock()
	return f.respond(call)
}

func (f *fakeEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newColorPage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{200, 40, 40, 255})
		}
	}
	return img
}

func TestRecognizeTile(t *testing.T) {
	engine := &fakeEngine{respond: func(int) (*Recognition, error) {
		return &Recognition{
			Text:   "12-345678-90-1\n",
			Tokens: []Token{{Text: "12-345678-90-1", Confidence: 90}, {Text: "A", Confidence: 80}},
		}, nil
	}}
	r := NewRecognizer(RecognizerConfig{Engine: engine, Options: DefaultOptions()})

	tile := imaging.Tile{X: 10, Y: 5, Width: 30, Height: 20}
	res, err := r.RecognizeTile(context.Background(), newColorPage(100, 50), tile)
	if err != nil {
		t.Fatalf("RecognizeTile failed: %v", err)
	}

	if res.RawText != "12-345678-90-1\n" {
		t.Errorf("RawText: got %q", res.RawText)
	}
	if res.MeanConfidence != 85 {
		t.Errorf("MeanConfidence: got %v, want 85", res.MeanConfidence)
	}
	if res.Tile != tile {
		t.Errorf("Tile: got %+v, want %+v", res.Tile, tile)
	}
	if res.Image.Bounds().Dx() != 30 || res.Image.Bounds().Dy() != 20 {
		t.Errorf("submitted image: got %dx%d, want 30x20", res.Image.Bounds().Dx(), res.Image.Bounds().Dy())
	}
	if engine.lastOpts.Whitelist != DefaultWhitelist {
		t.Errorf("Whitelist: got %q, want %q", engine.lastOpts.Whitelist, DefaultWhitelist)
	}
}

func TestRecognizeTile_NoTokens(t *testing.T) {
	engine := &fakeEngine{respond: func(int) (*Recognition, error) {
		return &Recognition{Text: ""}, nil
	}}
	r := NewRecognizer(RecognizerConfig{Engine: engine})

	res, err := r.RecognizeTile(context.Background(), newColorPage(20, 20), imaging.Tile{Width: 20, Height: 20})
	if err != nil {
		t.Fatalf("RecognizeTile failed: %v", err)
	}
	if res.MeanConfidence != 0 {
		t.Errorf("MeanConfidence: got %v, want 0", res.MeanConfidence)
	}
}

func TestRecognizeTile_Grayscale(t *testing.T) {
	engine := &fakeEngine{respond: func(int) (*Recognition, error) {
		return &Recognition{}, nil
	}}
	r := NewRecognizer(RecognizerConfig{Engine: engine, Grayscale: true})

	if _, err := r.RecognizeTile(context.Background(), newColorPage(20, 20), imaging.Tile{Width: 10, Height: 10}); err != nil {
		t.Fatalf("RecognizeTile failed: %v", err)
	}

	submitted, err := png.Decode(bytes.NewReader(engine.lastPNG))
	if err != nil {
		t.Fatalf("engine did not receive a PNG: %v", err)
	}
	cr, cg, cb, _ := submitted.At(3, 3).RGBA()
	if cr != cg || cg != cb {
		t.Errorf("submitted pixel not gray: (%d,%d,%d)", cr>>8, cg>>8, cb>>8)
	}
}

func TestRecognizeTile_RetriesTransientFailure(t *testing.T) {
	engine := &fakeEngine{respond: func(call int) (*Recognition, error) {
		if call == 1 {
			return nil, errors.New("tesseract crashed")
		}
		return &Recognition{Text: "ok", Tokens: []Token{{Text: "ok", Confidence: 70}}}, nil
	}}
	r := NewRecognizer(RecognizerConfig{Engine: engine, Attempts: 3})

	res, err := r.RecognizeTile(context.Background(), newColorPage(20, 20), imaging.Tile{Width: 20, Height: 20})
	if err != nil {
		t.Fatalf("RecognizeTile failed: %v", err)
	}
	if res.RawText != "ok" {
		t.Errorf("RawText: got %q, want ok", res.RawText)
	}
	if engine.callCount() != 2 {
		t.Errorf("engine calls: got %d, want 2", engine.callCount())
	}
}

func TestRecognizeTile_EngineFailure(t *testing.T) {
	cause := errors.New("unreadable image")
	engine := &fakeEngine{respond: func(int) (*Recognition, error) {
		return nil, cause
	}}
	r := NewRecognizer(RecognizerConfig{Engine: engine, Attempts: 3})

	tile := imaging.Tile{X: 0, Y: 0, Width: 20, Height: 20}
	_, err := r.RecognizeTile(context.Background(), newColorPage(20, 20), tile)
	if !errors.Is(err, ErrEngineFailure) {
		t.Fatalf("got %v, want ErrEngineFailure", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("cause not wrapped: %v", err)
	}

	var engErr *EngineError
	if !errors.As(err, &engErr) {
		t.Fatalf("expected *EngineError, got %T", err)
	}
	if engErr.Attempts != 3 {
		t.Errorf("Attempts: got %d, want 3", engErr.Attempts)
	}
	if engErr.Tile != tile {
		t.Errorf("Tile: got %+v, want %+v", engErr.Tile, tile)
	}
}

func TestRecognizeTile_Timeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	engine := &fakeEngine{respond: func(int) (*Recognition, error) {
		<-release
		return &Recognition{Text: "late"}, nil
	}}
	r := NewRecognizer(RecognizerConfig{Engine: engine, Timeout: 20 * time.Millisecond, Attempts: 3})

	start := time.Now()
	_, err := r.RecognizeTile(context.Background(), newColorPage(20, 20), imaging.Tile{Width: 20, Height: 20})
	if !errors.Is(err, ErrEngineFailure) {
		t.Fatalf("got %v, want ErrEngineFailure", err)
	}
	if !errors.Is(err, errTimeout) {
		t.Errorf("got %v, want timeout", err)
	}
	if engine.callCount() != 1 {
		t.Errorf("engine calls: got %d, want 1 (timeouts are not retried)", engine.callCount())
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout not enforced: took %v", elapsed)
	}
}

func TestRecognizeTile_EnginePanic(t *testing.T) {
	for _, timeout := range []time.Duration{0, time.Second} {
		t.Run(timeout.String(), func(t *testing.T) {
			engine := &fakeEngine{respond: func(int) (*Recognition, error) {
				panic("engine blew up")
			}}
			r := NewRecognizer(RecognizerConfig{Engine: engine, Timeout: timeout, Attempts: 1})

			_, err := r.RecognizeTile(context.Background(), newColorPage(20, 20), imaging.Tile{Width: 20, Height: 20})
			if !errors.Is(err, ErrEngineFailure) {
				t.Fatalf("got %v, want ErrEngineFailure", err)
			}
		})
	}
}

func TestRecognizeTile_CancelledIsNotTimeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	engine := &fakeEngine{respond: func(int) (*Recognition, error) {
		<-release
		return &Recognition{Text: "late"}, nil
	}}
	r := NewRecognizer(RecognizerConfig{Engine: engine, Timeout: 5 * time.Second, Attempts: 1})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := r.RecognizeTile(ctx, newColorPage(20, 20), imaging.Tile{Width: 20, Height: 20})
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, errTimeout) {
		t.Errorf("got %v, want a cancellation rather than a timeout", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestRecognizeTile_TileOutsideImage(t *testing.T) {
	engine := &fakeEngine{respond: func(int) (*Recognition, error) {
		return &Recognition{}, nil
	}}
	r := NewRecognizer(RecognizerConfig{Engine: engine})

	_, err := r.RecognizeTile(context.Background(), newColorPage(20, 20), imaging.Tile{X: 15, Width: 10, Height: 10})
	if !errors.Is(err, ErrEngineFailure) {
		t.Fatalf("got %v, want ErrEngineFailure", err)
	}
	if engine.callCount() != 0 {
		t.Errorf("engine calls: got %d, want 0", engine.callCount())
	}
}

func TestRecognizeTile_ConcurrentUse(t *testing.T) {
	engine := &fakeEngine{respond: func(int) (*Recognition, error) {
		return &Recognition{Text: "x", Tokens: []Token{{Text: "x", Confidence: 50}}}, nil
	}}
	r := NewRecognizer(RecognizerConfig{Engine: engine, Timeout: time.Second})
	page := newColorPage(100, 100)

	plan, err := imaging.PlanTiles(100, 100, imaging.TilingParams{SectionSizePercent: 30, OverlapPercent: 10})
	if err != nil {
		t.Fatalf("PlanTiles failed: %v", err)
	}

	var wg sync.WaitGroup
	for _, tile := range plan.Tiles {
		wg.Add(1)
		go func(tile imaging.Tile) {
			defer wg.Done()
			if _, err := r.RecognizeTile(context.Background(), page, tile); err != nil {
				t.Errorf("tile %s: %v", tile.Name(), err)
			}
		}(tile)
	}
	wg.Wait()

	if engine.callCount() != plan.Len() {
		t.Errorf("engine calls: got %d, want %d", engine.callCount(), plan.Len())
	}
}
