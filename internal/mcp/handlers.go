package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jayden9889/blogsmith/internal/generator"
	"github.com/jayden9889/blogsmith/internal/limiter"
	"github.com/jayden9889/blogsmith/internal/store"
)

// Handlers holds the dependencies MCP tool handlers work against.
type Handlers struct {
	store     *store.Store
	generator *generator.Generator
	limiter   *limiter.FileLimiter
}

func NewHandlers(s *store.Store, g *generator.Generator, l *limiter.FileLimiter) *Handlers {
	return &Handlers{store: s, generator: g, limiter: l}
}

// Request types for each tool.

type RuleAddRequest struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Reason string `json:"reason,omitempty"`
}

type RuleRemoveRequest struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type RuleListRequest struct {
	Type string `json:"type,omitempty"`
}

type ValidateRequest struct {
	Body string `json:"body"`
}

type GenerateRequest struct {
	Topic            string `json:"topic"`
	StrictDuplicates bool   `json:"strict_duplicates,omitempty"`
}

type TweakRequest struct {
	ID          string `json:"id"`
	Instruction string `json:"instruction"`
}

type DraftListRequest struct {
	Status string `json:"status,omitempty"`
}

type DraftApproveRequest struct {
	ID     string `json:"id"`
	Status string `json:"status,omitempty"`
}

type FeedbackRequest struct {
	Text string `json:"text"`
	Type string `json:"type,omitempty"`
}

func (h *Handlers) HandleRuleAdd(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RuleAddRequest](req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := store.ParseRuleType(input.Type)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rule, err := h.store.AddRule(t, input.Value, input.Reason)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return successResult(map[string]any{"type": t, "rule": rule})
}

func (h *Handlers) HandleRuleRemove(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RuleRemoveRequest](req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := store.ParseRuleType(input.Type)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := h.store.RemoveRule(t, input.Value)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return successResult(map[string]any{"removed": n})
}

func (h *Handlers) HandleRuleList(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RuleListRequest](req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if input.Type == "" {
		return successResult(h.store.AllActiveRules())
	}
	t, err := store.ParseRuleType(input.Type)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return successResult(map[store.RuleType][]store.Rule{t: h.store.ActiveRules(t)})
}

func (h *Handlers) HandleValidate(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ValidateRequest](req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if input.Body == "" {
		return mcp.NewToolResultError("body is required"), nil
	}
	return successResult(h.store.ValidateContent(input.Body))
}

func (h *Handlers) HandleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GenerateRequest](req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := h.generator.Generate(ctx, input.Topic, generator.Options{
		AllowDuplicates: !input.StrictDuplicates,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return successResult(generateResponse(res))
}

func generateResponse(res generator.Result) map[string]any {
	out := map[string]any{
		"state":    res.State,
		"attempts": res.Attempts,
	}
	if res.State == generator.StateRejected {
		out["title"] = res.Title
		out["body"] = res.Body
		out["issues"] = res.Issues
		return out
	}
	out["item"] = res.Item
	if len(res.Warnings) > 0 {
		out["warnings"] = res.Warnings
	}
	return out
}

func (h *Handlers) HandleTweak(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TweakRequest](req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	item, ok := h.store.ItemByID(input.ID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no item %q", input.ID)), nil
	}
	res, err := h.generator.Tweak(ctx, item.Title, item.Body, input.Instruction)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	updated, err := h.store.UpdateItemContent(item.ID, res.Title, res.Body)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return successResult(map[string]any{
		"item":         updated,
		"method":       res.Method,
		"change_ratio": res.ChangeRatio,
		"diff":         res.Diff,
	})
}

func (h *Handlers) HandleDraftList(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DraftListRequest](req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if input.Status == "" {
		return successResult(h.store.Items())
	}
	status, err := store.ParseStatus(input.Status)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return successResult(h.store.ItemsByStatus(status))
}

func (h *Handlers) HandleDraftApprove(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DraftApproveRequest](req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status := store.StatusApproved
	if input.Status != "" {
		status, err = store.ParseStatus(input.Status)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	item, err := h.store.UpdateItemStatus(input.ID, status)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return successResult(item)
}

func (h *Handlers) HandleFeedback(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FeedbackRequest](req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if input.Text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}
	learned, err := h.store.LearnFromFeedback(input.Type, input.Text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return successResult(map[string]any{"learned": learned})
}

func (h *Handlers) HandleStats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.store.StoreStats())
}

func (h *Handlers) HandleUsage(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.limiter.Stats()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return successResult(stats)
}

func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
