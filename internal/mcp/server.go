// Package mcp exposes the blog writer over the Model Context Protocol
// so agent frontends can manage rules, drafts, and generation.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

var toolRegistry = map[string]toolEntry{
	"rule_add": {
		def: mcp.NewTool("rule_add",
			mcp.WithDescription("Add a content preference rule (banned word, required element, style note, formatting rule, custom rule, or SEO keyword)."),
			mcp.WithString("type", mcp.Required(), mcp.Description("Rule type: banned_word, required_element, style_note, formatting_rule, custom_rule, or seo_keyword")),
			mcp.WithString("value", mcp.Required(), mcp.Description("The word, phrase, or rule text")),
			mcp.WithString("reason", mcp.Description("Why this rule exists")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRuleAdd },
	},
	"rule_remove": {
		def: mcp.NewTool("rule_remove",
			mcp.WithDescription("Deactivate a preference rule. The rule is kept in history, never deleted."),
			mcp.WithString("type", mcp.Required(), mcp.Description("Rule type")),
			mcp.WithString("value", mcp.Required(), mcp.Description("Rule value to deactivate (case-insensitive)")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRuleRemove },
	},
	"rule_list": {
		def: mcp.NewTool("rule_list",
			mcp.WithDescription("List active preference rules, optionally filtered to one type."),
			mcp.WithString("type", mcp.Description("Rule type filter; omit for all types")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRuleList },
	},
	"content_validate": {
		def: mcp.NewTool("content_validate",
			mcp.WithDescription("Validate a post body against the active rules and the duplicate index."),
			mcp.WithString("body", mcp.Required(), mcp.Description("Post body text")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleValidate },
	},
	"post_generate": {
		def: mcp.NewTool("post_generate",
			mcp.WithDescription("Generate a blog post about a topic. Retries automatically when a draft fails review. Consumes one usage slot."),
			mcp.WithString("topic", mcp.Required(), mcp.Description("What the post should be about")),
			mcp.WithBoolean("strict_duplicates", mcp.Description("Reject drafts that duplicate earlier posts")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGenerate },
	},
	"post_tweak": {
		def: mcp.NewTool("post_tweak",
			mcp.WithDescription("Apply a small edit to a stored post. Edits that would rewrite the post are rejected."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Item ID (prefix accepted)")),
			mcp.WithString("instruction", mcp.Required(), mcp.Description("The edit, e.g. 'change silk to wool'")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTweak },
	},
	"draft_list": {
		def: mcp.NewTool("draft_list",
			mcp.WithDescription("List stored posts, optionally filtered by status."),
			mcp.WithString("status", mcp.Description("draft, approved, or posted; omit for all")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDraftList },
	},
	"draft_approve": {
		def: mcp.NewTool("draft_approve",
			mcp.WithDescription("Move a stored post to a new status."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Item ID (prefix accepted)")),
			mcp.WithString("status", mcp.Description("Target status, default approved")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDraftApprove },
	},
	"feedback_learn": {
		def: mcp.NewTool("feedback_learn",
			mcp.WithDescription("Turn free-text feedback into durable rules. 'Never use X' bans X; 'always include Y' requires Y."),
			mcp.WithString("text", mcp.Required(), mcp.Description("The feedback")),
			mcp.WithString("type", mcp.Description("Feedback category, e.g. style")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFeedback },
	},
	"memory_stats": {
		def: mcp.NewTool("memory_stats",
			mcp.WithDescription("Summarize stored posts, active rules, and learning activity."),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStats },
	},
	"usage_status": {
		def: mcp.NewTool("usage_status",
			mcp.WithDescription("Report the remaining generation budget for the current window."),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUsage },
	},
}

// AllToolNames returns the registered tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// NewServer creates an MCP server with all blogsmith tools registered.
func NewServer(h *Handlers, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"blogsmith",
		version,
		server.WithToolCapabilities(false),
	)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run serves the tools over stdio until the client disconnects.
func Run(h *Handlers, version string) error {
	return server.ServeStdio(NewServer(h, version))
}
