package imaging

import (
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
)

// OverlayResult is a plan overlay encoded for transport.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	TileCount   int    `json:"tile_count"`
}

// PlanOverlay draws the outline of every tile in plan onto a copy of img and
// labels each tile with its plan index at its top-left corner.
//
// Overlapping tiles share edges, so the overlay shows both the grid and the
// overlap bands. An invalid colour falls back to semi-transparent red.
func PlanOverlay(img image.Image, plan *Plan, outlineHex string) *image.RGBA {
	bounds := img.Bounds()

	outline, err := parseHexColor(outlineHex)
	if err != nil {
		outline = color.RGBA{255, 0, 0, 128}
	}

	result := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	labelColor := color.RGBA{255, 255, 255, 255}
	bgColor := color.RGBA{0, 0, 0, 180}

	for i, t := range plan.Tiles {
		drawRect(result, t, outline)
		drawLabel(result, t.X+2, t.Y+2, strconv.Itoa(i), labelColor, bgColor)
	}

	return result
}

// EncodeOverlay renders a plan overlay as a base64 PNG.
func EncodeOverlay(img image.Image, plan *Plan, outlineHex string) (*OverlayResult, error) {
	overlay := PlanOverlay(img, plan, outlineHex)
	data, err := EncodePNG(overlay)
	if err != nil {
		return nil, err
	}
	return &OverlayResult{
		Width:       overlay.Bounds().Dx(),
		Height:      overlay.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    "image/png",
		TileCount:   plan.Len(),
	}, nil
}

// drawRect draws a one-pixel outline of t.
func drawRect(img *image.RGBA, t Tile, c color.RGBA) {
	right, bottom := t.Right()-1, t.Bottom()-1
	for x := t.X; x <= right; x++ {
		img.Set(x, t.Y, c)
		img.Set(x, bottom, c)
	}
	for y := t.Y; y <= bottom; y++ {
		img.Set(t.X, y, c)
		img.Set(right, y, c)
	}
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// drawLabel draws a tile index using a 3x5 pixel digit font.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			px, py := x+dx, y+dy
			if image.Pt(px, py).In(bounds) {
				img.Set(px, py, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					px, py := cx+col, y+row
					if image.Pt(px, py).In(bounds) {
						img.Set(px, py, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}
