// Package server implements an MCP (Model Context Protocol) server that
// exposes the document code scanner to MCP clients.
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logs go to stderr; stdout carries only protocol messages.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - scan_document: run the full tile/vote/escalate scan on a page and
//     optionally rename it
//   - plan_tiles: compute the tile grid, optionally with an overlay image
//   - extract_code: normalize a piece of OCR text and extract its code
//   - image_info: page dimensions, format and file size
//
// Decoded pages are cached between calls and evicted when a page is
// renamed.
//
// # Response Format
//
// Tool results are returned as JSON text inside MCP's content array:
//
//	{
//	  "content": [{"type": "text", "text": "{...}"}]
//	}
//
// Tool failures are JSON-RPC errors with code -32000 and the error message
// in the data field.
package server
