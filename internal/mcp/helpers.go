package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Response is the envelope every tool returns.
type Response struct {
	Data     any      `json:"data"`
	Context  any      `json:"context,omitempty"`
	Chart    string   `json:"chart,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Guidance []string `json:"_guidance,omitempty"`
}

func wrap(data, ctx any, warnings, guidance []string) Response {
	return Response{Data: data, Context: ctx, Warnings: warnings, Guidance: guidance}
}

// withChart attaches Mermaid charts, skipping empty ones.
func (r Response) withChart(charts ...string) Response {
	var parts []string
	for _, c := range charts {
		if c != "" {
			parts = append(parts, c)
		}
	}
	r.Chart = strings.Join(parts, "\n\n")
	return r
}

func textResult(v any) (*sdk.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &sdk.CallToolResult{Content: []sdk.Content{&sdk.TextContent{Text: string(out)}}}, nil
}

// schemaFor infers the input schema of T and marks date properties.
func schemaFor[T any](dateProps ...string) (*jsonschema.Schema, error) {
	s, err := jsonschema.For[T](nil)
	if err != nil {
		return nil, err
	}
	for _, name := range dateProps {
		if p, ok := s.Properties[name]; ok {
			p.Format = "date"
		}
	}
	return s, nil
}
