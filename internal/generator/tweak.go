package generator

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/jayden9889/blogsmith/internal/provider"
)

const (
	// How much of the text a tweak may change before it is rejected as
	// an accidental rewrite.
	maxChangeRatio        = 0.05
	maxChangeRatioRewrite = 0.15
)

var rewriteIntentRe = regexp.MustCompile(`(?i)\b(paragraph|section|rewrite|redo)\b`)

// directPatterns recognize word-substitution instructions that can be
// applied without calling the model. Each pattern captures the text to
// find as group "from" and its replacement as group "to".
var directPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^replace\s+["']?(?P<from>[^"']+?)["']?\s+with\s+["']?(?P<to>[^"']+?)["']?[.!]?$`),
	regexp.MustCompile(`(?i)^change\s+["']?(?P<from>[^"']+?)["']?\s+to\s+["']?(?P<to>[^"']+?)["']?[.!]?$`),
	regexp.MustCompile(`(?i)^use\s+["']?(?P<to>[^"']+?)["']?\s+instead\s+of\s+["']?(?P<from>[^"']+?)["']?[.!]?$`),
	regexp.MustCompile(`(?i)^swap\s+["']?(?P<from>[^"']+?)["']?\s+for\s+["']?(?P<to>[^"']+?)["']?[.!]?$`),
	regexp.MustCompile(`(?i)^fix\s+spelling:?\s+["']?(?P<from>[^"']+?)["']?\s+to\s+["']?(?P<to>[^"']+?)["']?[.!]?$`),
	regexp.MustCompile(`^["']?(?P<from>[^"']+?)["']?\s*(?:->|=>|→)\s*["']?(?P<to>[^"']+?)["']?$`),
	// Single-word shorthand: "colour to color", "colour/color".
	regexp.MustCompile(`(?i)^["']?(?P<from>\w+)["']?\s+to\s+["']?(?P<to>\w+)["']?[.!]?$`),
	regexp.MustCompile(`^["']?(?P<from>\w+)["']?\s*/\s*["']?(?P<to>\w+)["']?$`),
}

// EditRejectedError means an edit changed more of the text than its
// instruction plausibly asked for, so the original was kept.
type EditRejectedError struct {
	Ratio float64
	Limit float64
}

func (e *EditRejectedError) Error() string {
	return fmt.Sprintf("tweak: edit changed %.0f%% of the text (limit %.0f%%), original kept",
		e.Ratio*100, e.Limit*100)
}

// TweakResult reports how an edit was made and what it changed.
type TweakResult struct {
	Title       string  `json:"title"`
	Body        string  `json:"body"`
	Method      string  `json:"method"` // "direct" or "llm"
	ChangeRatio float64 `json:"change_ratio"`
	Diff        string  `json:"diff,omitempty"`
}

// Tweak applies a small edit instruction to a post. Simple substitution
// instructions are applied directly to both title and body; anything
// else goes to the model under a strict minimal-edit prompt. Either way
// the result is rejected if it changes more of the body than the
// instruction plausibly asked for: 5% normally, 15% when the
// instruction targets a paragraph or asks for a rewrite.
func (g *Generator) Tweak(ctx context.Context, title, body, instruction string) (TweakResult, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return TweakResult{}, fmt.Errorf("tweak: empty instruction")
	}

	var (
		editedTitle = title
		edited      string
		method      string
	)
	if from, to, ok := parseDirectEdit(instruction); ok {
		edited = replacePreservingCase(body, from, to)
		editedTitle = replacePreservingCase(title, from, to)
		method = "direct"
	}
	if method == "" || (edited == body && editedTitle == title) {
		var err error
		edited, err = g.llmTweak(ctx, body, instruction)
		if err != nil {
			return TweakResult{}, err
		}
		editedTitle = title
		method = "llm"
	}

	ratio := changeRatio(body, edited)
	limit := maxChangeRatio
	if rewriteIntentRe.MatchString(instruction) {
		limit = maxChangeRatioRewrite
	}
	if ratio > limit {
		return TweakResult{}, &EditRejectedError{Ratio: ratio, Limit: limit}
	}

	return TweakResult{
		Title:       editedTitle,
		Body:        edited,
		Method:      method,
		ChangeRatio: ratio,
		Diff:        unifiedDiff(body, edited),
	}, nil
}

func parseDirectEdit(instruction string) (from, to string, ok bool) {
	for _, re := range directPatterns {
		m := re.FindStringSubmatch(instruction)
		if m == nil {
			continue
		}
		for i, name := range re.SubexpNames() {
			switch name {
			case "from":
				from = strings.TrimSpace(m[i])
			case "to":
				to = strings.TrimSpace(m[i])
			}
		}
		if from != "" && to != "" {
			return from, to, true
		}
	}
	return "", "", false
}

// replacePreservingCase substitutes every case-insensitive occurrence of
// from with to, carrying over the casing of each matched occurrence:
// ALL-CAPS stays upper, Title Case stays titled, anything else takes the
// replacement as written.
func replacePreservingCase(text, from, to string) string {
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(from))
	if err != nil {
		return text
	}
	return re.ReplaceAllStringFunc(text, func(match string) string {
		switch {
		case match == strings.ToUpper(match) && strings.ContainsFunc(match, unicode.IsLetter):
			return strings.ToUpper(to)
		case startsUpper(match):
			return titleCase(to)
		default:
			return to
		}
	})
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

func titleCase(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}

const tweakSystemPrompt = `You are a precise copy editor. Apply ONLY the requested change to the text.
Do not rephrase, reorder, or improve anything else. Keep every other word exactly as it is.
Return the complete edited text and nothing else: no preamble, no explanation, no quotes around it.`

func (g *Generator) llmTweak(ctx context.Context, body, instruction string) (string, error) {
	req := provider.Request{
		System: tweakSystemPrompt,
		Prompt: fmt.Sprintf("Change requested: %s\n\nText:\n%s", instruction, body),
		// Room to echo the whole post back.
		MaxTokens: defaultTokenBudget,
	}
	response, err := g.provider.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("tweak: %w", err)
	}
	edited := strings.TrimSpace(response)
	if edited == "" {
		return "", fmt.Errorf("tweak: model returned empty text")
	}
	return edited, nil
}

// unifiedDiff renders the edit as a unified diff for display.
func unifiedDiff(before, after string) string {
	edits := myers.ComputeEdits(span.URIFromPath("post.md"), before, after)
	return fmt.Sprint(gotextdiff.ToUnified("before", "after", before, edits))
}
