package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/tilecode/internal/batch"
	"github.com/ironsheep/tilecode/internal/imaging"
	"github.com/ironsheep/tilecode/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "scan_document", "plan_tiles").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "scan_document":
		return s.handleScanDocument(ctx, args)
	case "plan_tiles":
		return s.handlePlanTiles(args)
	case "extract_code":
		return s.handleExtractCode(args)
	case "image_info":
		return s.handleImageInfo(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Scan ===

type scanDocumentArgs struct {
	Path           string  `json:"path"`
	ExpectedPrefix *string `json:"expected_prefix"`
	Rename         bool    `json:"rename"`
}

type tileVote struct {
	Index      int          `json:"index"`
	Tile       imaging.Tile `json:"tile"`
	Code       string       `json:"code"`
	Confidence float64      `json:"confidence"`
}

type passSummary struct {
	Number     int        `json:"number"`
	Enhanced   bool       `json:"enhanced"`
	Tiles      int        `json:"tiles"`
	Failed     int        `json:"failed"`
	Candidates []tileVote `json:"candidates"`
	DurationMS int64      `json:"duration_ms"`
}

type scanDocumentResult struct {
	ID             string           `json:"id"`
	Path           string           `json:"path"`
	Outcome        pipeline.Outcome `json:"outcome"`
	States         []pipeline.State `json:"states"`
	ExpectedPrefix string           `json:"expected_prefix,omitempty"`
	NewPath        string           `json:"new_path,omitempty"`
	Passes         []passSummary    `json:"passes"`
	DurationMS     int64            `json:"duration_ms"`
}

func (s *Server) handleScanDocument(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a scanDocumentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	if s.scanner == nil {
		return nil, errors.New("scanning is not configured")
	}

	var prefix string
	switch {
	case a.ExpectedPrefix != nil:
		prefix = *a.ExpectedPrefix
	case s.hint:
		prefix, _ = batch.ExpectedPrefix(a.Path)
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	res, err := s.scanner.ProcessImage(ctx, a.Path, img, prefix)
	if err != nil {
		return nil, err
	}

	out := scanDocumentResult{
		ID:             res.ID,
		Path:           res.Path,
		Outcome:        res.Outcome,
		States:         res.States,
		ExpectedPrefix: prefix,
		Passes:         make([]passSummary, 0, len(res.Passes)),
		DurationMS:     res.Duration.Milliseconds(),
	}
	for _, p := range res.Passes {
		out.Passes = append(out.Passes, summarizePass(p))
	}

	if a.Rename {
		newPath, err := s.renamer.Rename(a.Path, res.Outcome)
		if err != nil {
			return nil, err
		}
		if newPath != a.Path {
			out.NewPath = newPath
			if !s.renamer.DryRun {
				s.cache.Evict(a.Path)
			}
		}
	}

	s.logger.Info("document scanned", "document", a.Path, "outcome", res.Outcome.String(), "new_path", out.NewPath)
	return out, nil
}

func summarizePass(p pipeline.Pass) passSummary {
	sum := passSummary{
		Number:     p.Number,
		Enhanced:   p.Enhanced,
		Tiles:      len(p.Results),
		Candidates: []tileVote{},
		DurationMS: p.Duration.Milliseconds(),
	}
	for _, r := range p.Results {
		if r.Err != nil {
			sum.Failed++
			continue
		}
		if r.Candidate != nil {
			sum.Candidates = append(sum.Candidates, tileVote{
				Index:      r.Index,
				Tile:       r.Tile,
				Code:       r.Candidate.Code,
				Confidence: r.MeanConfidence,
			})
		}
	}
	return sum
}

// === Planning ===

type planTilesArgs struct {
	Path               string `json:"path"`
	SectionSizePercent *int   `json:"section_size_percent"`
	OverlapPercent     *int   `json:"overlap_percent"`
	Overlay            bool   `json:"overlay"`
	Color              string `json:"color"`
}

type planTilesResult struct {
	Plan    *imaging.Plan          `json:"plan"`
	Overlay *imaging.OverlayResult `json:"overlay,omitempty"`
}

func (s *Server) handlePlanTiles(args json.RawMessage) (interface{}, error) {
	var a planTilesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	params := s.tiling
	if a.SectionSizePercent != nil {
		params.SectionSizePercent = *a.SectionSizePercent
	}
	if a.OverlapPercent != nil {
		params.OverlapPercent = *a.OverlapPercent
	}
	if a.Color == "" {
		a.Color = "#FF0000"
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	plan, err := imaging.PlanImage(img, params)
	if err != nil {
		return nil, err
	}

	result := planTilesResult{Plan: plan}
	if a.Overlay {
		overlay, err := imaging.EncodeOverlay(img, plan, a.Color)
		if err != nil {
			return nil, err
		}
		result.Overlay = overlay
	}
	return result, nil
}

// === Extraction ===

type extractCodeArgs struct {
	Text string `json:"text"`
}

type extractCodeResult struct {
	CleanText string `json:"clean_text"`
	Found     bool   `json:"found"`
	Code      string `json:"code,omitempty"`
	Pattern   int    `json:"pattern"`
}

func (s *Server) handleExtractCode(args json.RawMessage) (interface{}, error) {
	var a extractCodeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	result := extractCodeResult{CleanText: s.extractor.Clean(a.Text), Pattern: -1}
	if c, ok := s.extractor.Extract(a.Text); ok {
		result.Found = true
		result.Code = c.Code
		result.Pattern = c.Pattern
	}
	return result, nil
}

// === Page Information ===

type imageInfoArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a imageInfoArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}
