package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the scanned page",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "scan_document",
			Description: "Scan a page for its document code: tile the page, recognize every tile, vote across tiles and retry once on an enhanced page. Optionally rename the file to <code>_verified or <name>_needs-review.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"expected_prefix": map[string]interface{}{
						"type":        "string",
						"description": "Only accept codes containing this text (e.g. \"24-07\"). Defaults to the NN-NN prefix of the page's grandparent directory when directory hints are enabled; pass \"\" to disable.",
					},
					"rename": map[string]interface{}{
						"type":        "boolean",
						"description": "Rename the file according to the outcome. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "plan_tiles",
			Description: "Compute the tile grid for a page and optionally return the page with the tiles drawn on it as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"section_size_percent": map[string]interface{}{
						"type":        "integer",
						"description": "Tile size as a percentage of each page dimension (1-100). Defaults to the configured value",
					},
					"overlap_percent": map[string]interface{}{
						"type":        "integer",
						"description": "Overlap between neighbouring tiles as a percentage of each page dimension. Must be smaller than the section size",
					},
					"overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the page with the tile outlines drawn on it. Default false",
						"default":     false,
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Outline color as hex (e.g. \"#FF0000\"). Default red",
						"default":     "#FF0000",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "extract_code",
			Description: "Normalize OCR text (confusable characters mapped to 0 and -) and return the document code it contains, if any.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Raw recognized text",
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "image_info",
			Description: "Get the width, height, format and file size of a page.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
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
