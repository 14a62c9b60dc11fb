package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"gjira/internal/errors"
	"gjira/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	env *ops.Env
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env *ops.Env) *Handlers {
	return &Handlers{env: env}
}

// Request types for each tool

// ContextRequest represents the arguments for gerrit_context.
type ContextRequest struct {
	URL string `json:"url"`
	Key string `json:"key,omitempty"`
}

// IssueRequest represents the arguments for jira_issue.
type IssueRequest struct {
	Key string `json:"key"`
}

// CommentRequest represents the arguments for jira_comment.
type CommentRequest struct {
	URL      string `json:"url"`
	Key      string `json:"key,omitempty"`
	Template string `json:"template,omitempty"`
	DryRun   bool   `json:"dry_run,omitempty"`
}

// LinkRequest represents the arguments for jira_link.
type LinkRequest struct {
	URL string `json:"url"`
	Key string `json:"key,omitempty"`
}

// HistoryRequest represents the arguments for bridge_history.
type HistoryRequest struct {
	Limit int `json:"limit,omitempty"`
}

// ConfigSetRequest represents the arguments for bridge_config_set.
type ConfigSetRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// HandleContext handles the gerrit_context tool call.
func (h *Handlers) HandleContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ContextRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Context(ctx, h.env, ops.ContextInput{
		URL: input.URL,
		Key: input.Key,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleIssue handles the jira_issue tool call.
func (h *Handlers) HandleIssue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IssueRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Issue(ctx, h.env, ops.IssueInput{Key: input.Key})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleComment handles the jira_comment tool call.
func (h *Handlers) HandleComment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CommentRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Comment(ctx, h.env, ops.CommentInput{
		URL:      input.URL,
		Key:      input.Key,
		Template: input.Template,
		DryRun:   input.DryRun,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleLink handles the jira_link tool call.
func (h *Handlers) HandleLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LinkRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Link(ctx, h.env, ops.LinkInput{
		URL: input.URL,
		Key: input.Key,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleHistory handles the bridge_history tool call.
func (h *Handlers) HandleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.History(h.env, ops.HistoryInput{Limit: input.Limit})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleConfigSet handles the bridge_config_set tool call.
func (h *Handlers) HandleConfigSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ConfigSetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SettingsSet(h.env, ops.SettingsSetInput{
		Key:   input.Key,
		Value: input.Value,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if bErr, ok := err.(*errors.BridgeError); ok {
		errorObj := map[string]any{
			"code":    bErr.Code,
			"message": bErr.Message,
			"status":  bErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if bErr.Code != errors.ErrInternal && bErr.Details != nil {
			errorObj["details"] = bErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
