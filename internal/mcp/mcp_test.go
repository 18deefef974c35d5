package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/jayden9889/blogsmith/internal/brand"
	"github.com/jayden9889/blogsmith/internal/config"
	"github.com/jayden9889/blogsmith/internal/generator"
	"github.com/jayden9889/blogsmith/internal/limiter"
	"github.com/jayden9889/blogsmith/internal/provider"
	"github.com/jayden9889/blogsmith/internal/refs"
	"github.com/jayden9889/blogsmith/internal/store"
)

type scriptedProvider struct {
	responses []string
	calls     int
}

func (p *scriptedProvider) Complete(_ context.Context, _ provider.Request) (string, error) {
	i := p.calls
	p.calls++
	if i < len(p.responses) {
		return p.responses[i], nil
	}
	return "", context.Canceled
}

func (p *scriptedProvider) Name() string      { return "scripted" }
func (p *scriptedProvider) ModelName() string { return "scripted-model" }

func newTestHandlers(t *testing.T, responses ...string) *Handlers {
	t.Helper()
	dir := t.TempDir()
	s, err := store.Open(dir)
	require.NoError(t, err)
	lim := limiter.New(dir, 10, 12)
	cfg := config.GenerationConfig{
		MinWords: 5, MaxWords: 100, TargetWords: 20,
		MaxAttempts: 3, SimilarityThreshold: 0.9, AllowDuplicates: true,
	}
	g := generator.New(&scriptedProvider{responses: responses}, s, lim, brand.Default(), refs.NewLibrary(nil), cfg)
	return NewHandlers(s, g, lim)
}

func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	return tc.Text
}

func TestRuleAddListRemove(t *testing.T) {
	h := newTestHandlers(t)
	ctx := context.Background()

	res, err := h.HandleRuleAdd(ctx, makeRequest(map[string]any{
		"type": "banned_word", "value": "Cheap", "reason": "sounds low-end",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Contains(t, resultText(t, res), "cheap")

	res, err = h.HandleRuleList(ctx, makeRequest(map[string]any{"type": "banned"}))
	require.NoError(t, err)
	require.Contains(t, resultText(t, res), "cheap")

	res, err = h.HandleRuleRemove(ctx, makeRequest(map[string]any{
		"type": "banned_word", "value": "cheap",
	}))
	require.NoError(t, err)
	var removed struct {
		Removed int `json:"removed"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &removed))
	require.Equal(t, 1, removed.Removed)
}

func TestRuleAddRejectsUnknownType(t *testing.T) {
	h := newTestHandlers(t)
	res, err := h.HandleRuleAdd(context.Background(), makeRequest(map[string]any{
		"type": "shoe_size", "value": "11",
	}))
	require.NoError(t, err)
	require.True(t, res.IsError)
}

func TestGenerateAndApprove(t *testing.T) {
	body := strings.TrimSpace(strings.Repeat("fine words about ties here ", 4))
	h := newTestHandlers(t, "A Good Title\n\n"+body)
	ctx := context.Background()

	res, err := h.HandleGenerate(ctx, makeRequest(map[string]any{"topic": "club ties"}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var out struct {
		State string `json:"state"`
		Item  struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"item"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	require.Equal(t, "accepted", out.State)
	require.Equal(t, "draft", out.Item.Status)

	res, err = h.HandleDraftApprove(ctx, makeRequest(map[string]any{"id": out.Item.ID}))
	require.NoError(t, err)
	require.Contains(t, resultText(t, res), `"approved"`)
}

func TestValidateTool(t *testing.T) {
	h := newTestHandlers(t)
	ctx := context.Background()

	_, err := h.HandleRuleAdd(ctx, makeRequest(map[string]any{"type": "banned", "value": "synergy"}))
	require.NoError(t, err)

	res, err := h.HandleValidate(ctx, makeRequest(map[string]any{"body": "pure synergy in every stitch"}))
	require.NoError(t, err)
	var out store.ValidationResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	require.False(t, out.Passed)

	res, err = h.HandleValidate(ctx, makeRequest(map[string]any{}))
	require.NoError(t, err)
	require.True(t, res.IsError)
}

func TestFeedbackTool(t *testing.T) {
	h := newTestHandlers(t)
	res, err := h.HandleFeedback(context.Background(), makeRequest(map[string]any{
		"text": "never use jargon",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Contains(t, resultText(t, res), "jargon")
}

func TestUsageTool(t *testing.T) {
	h := newTestHandlers(t)
	res, err := h.HandleUsage(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Contains(t, resultText(t, res), "remaining")
}

func TestAllToolNamesRegistered(t *testing.T) {
	names := AllToolNames()
	require.Len(t, names, len(toolRegistry))
	require.Contains(t, names, "post_generate")
	require.Contains(t, names, "rule_add")
}
