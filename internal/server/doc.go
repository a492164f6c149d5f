// Package server implements the MCP (Model Context Protocol) server for the
// color sampling tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_load: Load image and get metadata
//   - image_sample_color: Get color at pixel
//   - image_average_color: Grid-sampled mean color
//   - image_dominant_color: Most frequent exact color
//   - image_color_frequencies: Exact color histogram
//   - image_palette: k-means palette
//   - image_analyze: Dimensions, average, most common (and palette)
//
// Sampling defaults for image_average_color and image_analyze come from the
// analyzer.Options the server was created with, so `colorsample serve`
// honors the same config file and environment as the batch report.
//
// # Image Caching
//
// Decoded images are cached by path for the lifetime of the process. Failed
// loads are not cached, so a file fixed on disk can be retried.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000 and data {"error": "...", "kind": "decode"|"empty_sample"|...}.
// Malformed request lines are logged to stderr and skipped.
//
// # Usage
//
//	srv := server.New()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
