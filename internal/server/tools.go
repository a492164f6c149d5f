package server

import "github.com/ironsheep/colorsample/internal/imaging"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func intProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

func regionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Optional region to restrict sampling to; (x1,y1) inclusive, (x2,y2) exclusive",
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer"},
			"y1": map[string]interface{}{"type": "integer"},
			"x2": map[string]interface{}{"type": "integer"},
			"y2": map[string]interface{}{"type": "integer"},
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and whether it has an alpha channel. The decoded image is cached for subsequent calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Color Operations
		{
			Name:        "image_sample_color",
			Description: "Get the exact color at a pixel, as hex, RGB, RGBA and HSL.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x":    intProperty("X coordinate (0-based)"),
					"y":    intProperty("Y coordinate (0-based)"),
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "image_average_color",
			Description: "Average color of the pixels on a sampling grid. Pixels at or below the alpha threshold are skipped.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     pathProperty(),
					"stride_x": intProperty("Horizontal grid spacing in pixels. Default 10"),
					"stride_y": intProperty("Vertical grid spacing in pixels. Default 10"),
					"alpha_threshold": intProperty(
						"Skip pixels with alpha <= this value (0-255). Omit for auto: 128 when the image has alpha, otherwise no filtering. -2 disables filtering"),
					"rounding": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"half-up", "half-even", "down"},
						"description": "How channel means are rounded. Default half-up",
					},
					"region": regionProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dominant_color",
			Description: "Most frequent exact color on a sampling grid. Ties go to the color seen first in row-major order. Optionally counts on a resampled thumbnail.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":             pathProperty(),
					"stride_x":         intProperty("Horizontal grid spacing in pixels. Default from server config (1)"),
					"stride_y":         intProperty("Vertical grid spacing in pixels. Default from server config (1)"),
					"thumbnail_width":  intProperty("Resample to this width before counting. Default from server config; 0 counts on the original image"),
					"thumbnail_height": intProperty("Resample to this height before counting. Default from server config; 0 counts on the original image"),
					"filter": map[string]interface{}{
						"type":        "string",
						"enum":        imaging.FilterNames(),
						"description": "Resampling filter for the thumbnail. Default from server config (lanczos); use nearest to keep exact source colors",
					},
					"region": regionProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_color_frequencies",
			Description: "Exact color histogram on a sampling grid, most frequent first.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     pathProperty(),
					"stride_x": intProperty("Horizontal grid spacing in pixels. Default 1"),
					"stride_y": intProperty("Vertical grid spacing in pixels. Default 1"),
					"limit":    intProperty("Maximum colors to return. Default 10; negative returns all"),
					"region":   regionProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_palette",
			Description: "Representative palette found by k-means clustering, largest cluster first.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"count":  intProperty("Number of palette colors. Default 5"),
					"region": regionProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Full Analysis
		{
			Name:        "image_analyze",
			Description: "Full color summary of an image: dimensions, average color and most common color, using the server's configured sampling.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":         pathProperty(),
					"palette_size": intProperty("Add a k-means palette of this size; 0 disables"),
					"region":       regionProperty(),
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
