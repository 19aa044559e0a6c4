// Package app assembles the scanner from a loaded configuration: the
// extractor, recognizer, pipeline, diagnostics, renamer and batch runner
// that the commands and the MCP server share.
package app
