// Package ocr runs the text recognition engine on page tiles.
//
// Engine is the narrow contract the scanner needs from a recognizer: a PNG
// image and a configuration in, recognized text and per-word confidences out.
// Tesseract implements it with gosseract/v2 and is available in cgo builds.
//
// Recognizer adapts an Engine to tiles. It crops the tile from the page,
// optionally converts it to grayscale, bounds each engine call with a
// timeout and retries transient failures. Every failure is reported as an
// *EngineError, which matches ErrEngineFailure.
//
// # Confidence
//
// Confidences use Tesseract's 0-100 scale. The confidence of a tile is the
// mean over its words; a tile without words has confidence 0.
//
// # Restricted Alphabet
//
// DefaultOptions limits recognition to "0123456789A-" with page segmentation
// mode 6 (a single uniform block). Identifier codes are short and stamped, so
// a narrow whitelist removes most letter/digit confusions at the source.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng libtesseract-dev
//   - macOS: brew install tesseract
//
// Builds without cgo link a stub whose Recognize always fails.
package ocr
