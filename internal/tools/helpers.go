// Package tools implements the MCP tool handlers for WorkSync.
//
// Each tool is a struct with dependencies injected via its constructor,
// a Definition() returning the mcp.Tool schema, and a Handle() that
// processes the request. Domain failures (unknown project, duplicate ID,
// invalid status) are returned as tool error results so the calling
// agent can correct itself; internal failures propagate as Go errors.
package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/worksync/worksync/internal/registry"
	"github.com/worksync/worksync/internal/workindex"
)

// jsonResult marshals v as indented JSON into a text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// resultForError maps domain errors to tool error results and passes
// everything else through as an internal error.
func resultForError(err error) (*mcp.CallToolResult, error) {
	switch {
	case errors.Is(err, workindex.ErrNotFound),
		errors.Is(err, workindex.ErrConflict),
		errors.Is(err, workindex.ErrInvalidValue),
		errors.Is(err, workindex.ErrCorrupt),
		errors.Is(err, registry.ErrUnknownProject):
		return mcp.NewToolResultError(err.Error()), nil
	}
	return nil, err
}

// stringSliceArg extracts a string-array argument from a tool request.
// The bool reports whether the argument was present. A present but
// malformed value (not an array, or a non-string element) returns an
// error so the caller can reject it rather than drop it silently.
func stringSliceArg(req mcp.CallToolRequest, key string) ([]string, bool, error) {
	v, present := req.GetArguments()[key]
	if !present || v == nil {
		return nil, false, nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, true, fmt.Errorf("invalid %s: expected an array of strings", key)
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, true, fmt.Errorf("invalid %s: expected an array of strings", key)
		}
		out = append(out, s)
	}
	return out, true, nil
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// agentArg returns the calling agent's name, defaulting to "unknown".
func agentArg(req mcp.CallToolRequest) string {
	return req.GetString("agent", "unknown")
}

func agentOption() mcp.PropertyOption {
	return mcp.Description("Agent making the change (e.g. 'claude', 'codex')")
}
