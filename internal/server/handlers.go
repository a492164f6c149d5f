package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/colorsample/internal/analyzer"
	"github.com/ironsheep/colorsample/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_average_color").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// errMissingPath is returned by every tool called without a path.
var errMissingPath = errors.New("path is required")

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000
// whose data carries the error text and its analyzer.ErrorKind.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		kind := analyzer.KindOf(err)
		s.log.WithField("tool", params.Name).WithField("kind", kind).WithError(err).Warn("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", map[string]interface{}{
			"error": err.Error(),
			"kind":  kind,
		})
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "image_sample_color":
		return s.handleImageSampleColor(args)
	case "image_average_color":
		return s.handleImageAverageColor(args)
	case "image_dominant_color":
		return s.handleImageDominantColor(args)
	case "image_color_frequencies":
		return s.handleImageColorFrequencies(args)
	case "image_palette":
		return s.handleImagePalette(args)
	case "image_analyze":
		return s.handleImageAnalyze(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// source loads path from the cache and applies the optional region.
func (s *Server) source(path string, region *imaging.Region) (image.Image, error) {
	if path == "" {
		return nil, errMissingPath
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	if region != nil {
		return imaging.CropRegion(img, *region)
	}
	return img, nil
}

// strides fills unset strides from the fallback pair.
func strides(x, y, fallbackX, fallbackY int) (int, int) {
	if x == 0 {
		x = fallbackX
	}
	if y == 0 {
		y = fallbackY
	}
	return x, y
}

// === Image Information ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errMissingPath
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Color Operations ===

type imageSampleColorArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.source(a.Path, nil)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(img, a.X, a.Y)
}

type imageAverageColorArgs struct {
	Path    string `json:"path"`
	StrideX int    `json:"stride_x"`
	StrideY int    `json:"stride_y"`
	// AlphaThreshold nil means auto.
	AlphaThreshold *int            `json:"alpha_threshold,omitempty"`
	Rounding       string          `json:"rounding"`
	Region         *imaging.Region `json:"region,omitempty"`
}

// AverageColorResult is the image_average_color response.
type AverageColorResult struct {
	Color    *imaging.ColorResult `json:"color"`
	StrideX  int                  `json:"stride_x"`
	StrideY  int                  `json:"stride_y"`
	Rounding string               `json:"rounding"`
}

func (s *Server) handleImageAverageColor(args json.RawMessage) (interface{}, error) {
	var a imageAverageColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	opts := s.opts.Average
	if a.AlphaThreshold != nil {
		opts.AlphaThreshold = *a.AlphaThreshold
	}
	if a.Rounding != "" {
		mode, err := imaging.ParseRoundingMode(a.Rounding)
		if err != nil {
			return nil, err
		}
		opts.Rounding = mode
	}
	sx, sy := strides(a.StrideX, a.StrideY, s.opts.StrideX, s.opts.StrideY)

	img, err := s.source(a.Path, a.Region)
	if err != nil {
		return nil, err
	}
	avg, err := imaging.AverageColor(img, sx, sy, opts)
	if err != nil {
		return nil, err
	}
	return &AverageColorResult{
		Color:    imaging.NewColorResult(avg),
		StrideX:  sx,
		StrideY:  sy,
		Rounding: opts.Rounding.String(),
	}, nil
}

type imageDominantColorArgs struct {
	Path    string `json:"path"`
	StrideX int    `json:"stride_x"`
	StrideY int    `json:"stride_y"`
	// Thumbnail sizes default to the server's; an explicit 0 counts on the
	// original image.
	ThumbnailWidth  *int            `json:"thumbnail_width,omitempty"`
	ThumbnailHeight *int            `json:"thumbnail_height,omitempty"`
	Filter          string          `json:"filter"`
	Region          *imaging.Region `json:"region,omitempty"`
}

func (s *Server) handleImageDominantColor(args json.RawMessage) (interface{}, error) {
	var a imageDominantColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	w, h := s.opts.ThumbnailWidth, s.opts.ThumbnailHeight
	if a.ThumbnailWidth != nil {
		w = *a.ThumbnailWidth
	}
	if a.ThumbnailHeight != nil {
		h = *a.ThumbnailHeight
	}
	filter := a.Filter
	if filter == "" {
		filter = s.opts.Filter
	}
	sx, sy := strides(a.StrideX, a.StrideY, s.opts.DominantStrideX, s.opts.DominantStrideY)
	sx, sy = strides(sx, sy, 1, 1)

	img, err := s.source(a.Path, a.Region)
	if err != nil {
		return nil, err
	}
	if w > 0 || h > 0 {
		img, err = imaging.Thumbnail(img, w, h, filter)
		if err != nil {
			return nil, err
		}
	}
	c, err := imaging.DominantColor(img, sx, sy)
	if err != nil {
		return nil, err
	}
	return imaging.NewColorResult(c), nil
}

type imageColorFrequenciesArgs struct {
	Path    string          `json:"path"`
	StrideX int             `json:"stride_x"`
	StrideY int             `json:"stride_y"`
	Limit   int             `json:"limit"`
	Region  *imaging.Region `json:"region,omitempty"`
}

// ColorFrequenciesResult is the image_color_frequencies response.
type ColorFrequenciesResult struct {
	Colors        []imaging.ColorFrequency `json:"colors"`
	DistinctCount int                      `json:"distinct_count"`
	SampledCount  int                      `json:"sampled_count"`
}

func (s *Server) handleImageColorFrequencies(args json.RawMessage) (interface{}, error) {
	var a imageColorFrequenciesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Limit == 0 {
		a.Limit = 10
	}
	img, err := s.source(a.Path, a.Region)
	if err != nil {
		return nil, err
	}
	sx, sy := strides(a.StrideX, a.StrideY, 1, 1)
	freqs, err := imaging.ColorFrequencies(img, sx, sy)
	if err != nil {
		return nil, err
	}

	res := &ColorFrequenciesResult{DistinctCount: len(freqs)}
	for _, f := range freqs {
		res.SampledCount += f.Count
	}
	if a.Limit > 0 && len(freqs) > a.Limit {
		freqs = freqs[:a.Limit]
	}
	res.Colors = freqs
	return res, nil
}

type imagePaletteArgs struct {
	Path   string          `json:"path"`
	Count  int             `json:"count"`
	Region *imaging.Region `json:"region,omitempty"`
}

func (s *Server) handleImagePalette(args json.RawMessage) (interface{}, error) {
	var a imagePaletteArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Count == 0 {
		a.Count = 5
	}
	img, err := s.source(a.Path, a.Region)
	if err != nil {
		return nil, err
	}
	colors, err := imaging.Palette(img, a.Count)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"colors": colors}, nil
}

// === Full Analysis ===

type imageAnalyzeArgs struct {
	Path        string          `json:"path"`
	PaletteSize *int            `json:"palette_size,omitempty"`
	Region      *imaging.Region `json:"region,omitempty"`
}

func (s *Server) handleImageAnalyze(args json.RawMessage) (interface{}, error) {
	var a imageAnalyzeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errMissingPath
	}

	an := s.analyzer
	if a.PaletteSize != nil || a.Region != nil {
		opts := s.opts
		if a.PaletteSize != nil {
			opts.PaletteSize = *a.PaletteSize
		}
		opts.Region = a.Region
		an = analyzer.New(opts, s.cache, s.log)
	}
	return an.Analyze(a.Path)
}
