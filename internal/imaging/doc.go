// Package imaging provides the page-level image operations used by the scanner.
//
// This package loads scanned pages, plans the overlapping tile grid that the
// recognition stage walks, crops tiles, and produces the enhanced page used for
// the escalation pass. It also renders plan overlays for inspection.
// All operations work with standard Go image.Image types and use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward.
//
// # Tiling
//
// PlanTiles splits a page into sections sized as a percentage of each
// dimension. Neighbouring sections overlap by a second percentage so that a
// code printed across a section boundary is still seen whole by at least one
// tile. Tiles are emitted in row-major order and clamped at the page edges:
//
//	section = floor(dimension * section% / 100)
//	shift   = section - floor(dimension * overlap% / 100)
//
// A plan whose shift is not strictly positive on either axis is rejected with
// ErrInvalidParameters.
//
// # Coordinate System
//
// Tile coordinates are 0-based and relative to the image origin. For a tile,
// (X,Y) is inclusive and (Right(),Bottom()) is exclusive.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. CropTile, Enhance and the
// other operations never modify their input, so a single decoded page may be
// shared by all recognition workers.
//
// # Performance Considerations
//
// Scanned pages are large. Batch scanning loads each page once and drops it
// after processing; only the server keeps pages in an ImageCache, where
// Evict() or Clear() should be used after files are renamed.
package imaging
