package imaging

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// CropTile extracts a tile from an image.
//
// Tile coordinates are relative to the image origin, so images whose bounds
// do not start at (0,0) (sub-images, some TIFF decoders) are handled. The
// tile must lie entirely inside the image and have a positive area.
func CropTile(img image.Image, t Tile) (*image.NRGBA, error) {
	bounds := img.Bounds()
	rect := t.Rect(bounds.Min)

	if !rect.In(bounds) {
		return nil, fmt.Errorf("tile (%d,%d)-(%d,%d) outside image bounds %dx%d",
			t.X, t.Y, t.Right(), t.Bottom(), bounds.Dx(), bounds.Dy())
	}
	if t.Width <= 0 || t.Height <= 0 {
		return nil, fmt.Errorf("invalid tile size %dx%d", t.Width, t.Height)
	}

	return imaging.Crop(img, rect), nil
}

// Grayscale returns a grayscale copy of img.
func Grayscale(img image.Image) *image.NRGBA {
	return imaging.Grayscale(img)
}

// EncodePNG encodes an image as PNG bytes, the form the recognition engine
// accepts.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// SavePNG writes an image to path as PNG.
func SavePNG(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
