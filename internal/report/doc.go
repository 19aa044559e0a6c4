// Package report writes what a scan produced.
//
// Diagnostics stores, for every pass over a document, the tile images, the
// raw and cleaned recognized text, a plan overlay and an OCR_Results.md
// summary under results/<document stem>/pass<N>/ next to the document.
//
// Run collects one entry per document of a batch and is saved as YAML.
package report
