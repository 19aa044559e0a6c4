package imaging

import (
	"context"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// EnhanceOptions configures the page enhancement used for the second pass.
type EnhanceOptions struct {
	// UpscaleFactor multiplies both dimensions. Values <= 1 disable upscaling.
	UpscaleFactor float64 `json:"upscale_factor"`

	// Sharpen applies a 3x3 unsharp kernel after upscaling.
	Sharpen bool `json:"sharpen"`

	// ClipPercent is the share of darkest and brightest pixels clipped when
	// stretching contrast. Zero stretches between the exact min and max.
	ClipPercent float64 `json:"clip_percent"`
}

// DefaultEnhanceOptions returns the settings used for escalation passes.
func DefaultEnhanceOptions() EnhanceOptions {
	return EnhanceOptions{
		UpscaleFactor: 2,
		Sharpen:       true,
		ClipPercent:   1,
	}
}

// Enhancer produces an upscaled, sharpened, contrast-normalized grayscale
// copy of a page. It has no state besides its options and is safe for
// concurrent use.
type Enhancer struct {
	opts EnhanceOptions
}

// NewEnhancer creates an Enhancer.
func NewEnhancer(opts EnhanceOptions) *Enhancer {
	return &Enhancer{opts: opts}
}

// Enhance implements the escalation collaborator. The source image is not
// modified.
func (e *Enhancer) Enhance(ctx context.Context, img image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Enhance(img, e.opts), nil
}

// Enhance runs the enhancement steps in order: perceptual grayscale,
// upscale, sharpen, contrast stretch.
func Enhance(img image.Image, opts EnhanceOptions) *image.Gray {
	var out image.Image = Lightness(img)

	if opts.UpscaleFactor > 1 {
		b := out.Bounds()
		w := int(math.Round(float64(b.Dx()) * opts.UpscaleFactor))
		h := int(math.Round(float64(b.Dy()) * opts.UpscaleFactor))
		out = imaging.Resize(out, w, h, imaging.CatmullRom)
	}

	if opts.Sharpen {
		out = effect.Sharpen(out)
	}

	return StretchContrast(out, opts.ClipPercent)
}

// Lightness converts an image to grayscale using CIE L* rather than luma,
// which keeps faint pencil and stamp ink separated from paper tone.
//
// Conversions are memoized per 8-bit RGB value; scanned pages use few
// distinct colours, so the cost is dominated by the pixel walk.
func Lightness(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < b.Dy(); y++ {
			copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return out
	}

	memo := make(map[uint32]uint8)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			r8, g8, b8 := uint8(r>>8), uint8(g>>8), uint8(bl>>8)
			key := uint32(r8)<<16 | uint32(g8)<<8 | uint32(b8)

			v, ok := memo[key]
			if !ok {
				c := colorful.Color{R: float64(r8) / 255, G: float64(g8) / 255, B: float64(b8) / 255}
				l, _, _ := c.Lab()
				v = uint8(math.Round(clampFloat(l, 0, 1) * 255))
				memo[key] = v
			}
			out.Pix[y*out.Stride+x] = v
		}
	}
	return out
}

// StretchContrast linearly maps the [low, high] intensity range of img onto
// [0, 255], where low and high are the clipPercent percentiles of the
// intensity histogram. Images with a single intensity are returned unchanged
// apart from the grayscale conversion.
func StretchContrast(img image.Image, clipPercent float64) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	var hist [256]int
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			v := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y
			gray.Pix[y*gray.Stride+x] = v
			hist[v]++
		}
	}

	total := b.Dx() * b.Dy()
	if total == 0 {
		return gray
	}
	clip := int(float64(total) * clampFloat(clipPercent, 0, 49) / 100)

	low, high := 0, 255
	for acc := 0; low < 255; low++ {
		acc += hist[low]
		if acc > clip {
			break
		}
	}
	for acc := 0; high > 0; high-- {
		acc += hist[high]
		if acc > clip {
			break
		}
	}
	if high <= low {
		return gray
	}

	var lut [256]uint8
	span := float64(high - low)
	for v := 0; v < 256; v++ {
		lut[v] = uint8(math.Round(clampFloat(float64(v-low)/span, 0, 1) * 255))
	}
	for i, v := range gray.Pix {
		gray.Pix[i] = lut[v]
	}
	return gray
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
