package imaging

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidParameters is returned when tiling parameters cannot produce a
// progressing grid.
var ErrInvalidParameters = errors.New("invalid tiling parameters")

// TilingParams controls how a page is split into sections.
//
// SectionSizePercent is the tile size as a percentage of each image
// dimension, in (0, 100]. OverlapPercent is the overlap between neighbouring
// tiles, also a percentage of the image dimension, in [0, 100).
type TilingParams struct {
	SectionSizePercent int `json:"section_size_percent"`
	OverlapPercent     int `json:"overlap_percent"`
}

// Validate checks the percentage ranges independently of any image size.
func (p TilingParams) Validate() error {
	if p.SectionSizePercent <= 0 || p.SectionSizePercent > 100 {
		return fmt.Errorf("%w: section size must be in (0,100], got %d", ErrInvalidParameters, p.SectionSizePercent)
	}
	if p.OverlapPercent < 0 || p.OverlapPercent >= 100 {
		return fmt.Errorf("%w: overlap must be in [0,100), got %d", ErrInvalidParameters, p.OverlapPercent)
	}
	if p.OverlapPercent >= p.SectionSizePercent {
		return fmt.Errorf("%w: overlap %d%% must be smaller than section size %d%%",
			ErrInvalidParameters, p.OverlapPercent, p.SectionSizePercent)
	}
	return nil
}

// Tile is one rectangular section of a page in source pixel coordinates.
// X and Y are relative to the image origin (bounds.Min), not absolute.
type Tile struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Right returns the exclusive right edge.
func (t Tile) Right() int { return t.X + t.Width }

// Bottom returns the exclusive bottom edge.
func (t Tile) Bottom() int { return t.Y + t.Height }

// Rect returns the tile as an image.Rectangle offset by origin.
func (t Tile) Rect(origin image.Point) image.Rectangle {
	return image.Rect(t.X, t.Y, t.Right(), t.Bottom()).Add(origin)
}

// Name returns the artifact name used for this tile, e.g. "section_120_0".
func (t Tile) Name() string {
	return fmt.Sprintf("section_%d_%d", t.X, t.Y)
}

// Plan is an ordered list of tiles in row-major order. The order is
// significant: aggregation breaks ties by plan position.
type Plan struct {
	ImageWidth    int    `json:"image_width"`
	ImageHeight   int    `json:"image_height"`
	SectionWidth  int    `json:"section_width"`
	SectionHeight int    `json:"section_height"`
	ShiftWidth    int    `json:"shift_width"`
	ShiftHeight   int    `json:"shift_height"`
	Tiles         []Tile `json:"tiles"`
}

// Len returns the number of tiles in the plan.
func (p *Plan) Len() int { return len(p.Tiles) }

// PlanTiles computes the tiling grid for an image of the given size.
//
// Section and overlap sizes are floor(dimension * percent / 100). The step
// between tile origins is section - overlap and must be strictly positive on
// both axes, otherwise ErrInvalidParameters is returned instead of producing
// a grid that never advances.
//
// Tiles are emitted with y as the outer loop and x as the inner loop. Edge
// tiles are clamped to the image, so the last tile of a row or column may be
// smaller than the section size.
func PlanTiles(width, height int, params TilingParams) (*Plan, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", ErrInvalidParameters, width, height)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	sectionW := width * params.SectionSizePercent / 100
	sectionH := height * params.SectionSizePercent / 100
	shiftW := sectionW - width*params.OverlapPercent/100
	shiftH := sectionH - height*params.OverlapPercent/100

	if shiftW <= 0 || shiftH <= 0 {
		return nil, fmt.Errorf("%w: step %dx%d for %dx%d image (section %d%%, overlap %d%%)",
			ErrInvalidParameters, shiftW, shiftH, width, height,
			params.SectionSizePercent, params.OverlapPercent)
	}

	cols := (width + shiftW - 1) / shiftW
	rows := (height + shiftH - 1) / shiftH
	tiles := make([]Tile, 0, cols*rows)

	for y := 0; y < height; y += shiftH {
		bottom := minInt(y+sectionH, height)
		for x := 0; x < width; x += shiftW {
			right := minInt(x+sectionW, width)
			tiles = append(tiles, Tile{X: x, Y: y, Width: right - x, Height: bottom - y})
		}
	}

	return &Plan{
		ImageWidth:    width,
		ImageHeight:   height,
		SectionWidth:  sectionW,
		SectionHeight: sectionH,
		ShiftWidth:    shiftW,
		ShiftHeight:   shiftH,
		Tiles:         tiles,
	}, nil
}

// PlanImage is PlanTiles for an already decoded image.
func PlanImage(img image.Image, params TilingParams) (*Plan, error) {
	b := img.Bounds()
	return PlanTiles(b.Dx(), b.Dy(), params)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
