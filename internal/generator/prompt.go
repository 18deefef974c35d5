package generator

import (
	"fmt"
	"strings"

	"github.com/jayden9889/blogsmith/internal/brand"
	"github.com/jayden9889/blogsmith/internal/refs"
	"github.com/jayden9889/blogsmith/internal/store"
)

const (
	defaultTokenBudget = 2000
	// Retries skew the token budget against the previous draft's length
	// so the model has headroom when it ran short and a tighter ceiling
	// when it ran long.
	shortRetryTokenBudget = 2500
	longRetryTokenBudget  = 1500

	refExcerptLen    = 700
	coveredTopicsMax = 10
)

// attemptContext carries what the previous attempt got wrong into the
// next prompt. The zero value means a first attempt.
type attemptContext struct {
	attempt       int
	prevWordCount int
	prevIssues    []string
}

func (a attemptContext) tokenBudget(minWords, maxWords int) int {
	if a.attempt <= 1 || a.prevWordCount == 0 {
		return defaultTokenBudget
	}
	if a.prevWordCount < minWords {
		return shortRetryTokenBudget
	}
	if a.prevWordCount > maxWords {
		return longRetryTokenBudget
	}
	return defaultTokenBudget
}

// systemPrompt layers the brand profile with the learned preferences.
// The profile is the base voice; store rules are appended as adjustments
// so later feedback refines rather than replaces the persona.
func systemPrompt(p *brand.Profile, rules map[store.RuleType][]store.Rule) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You write blog posts for %s, %s.\n", p.Name, p.Description)
	fmt.Fprintf(&b, "Overall tone: %s. Formality: %s.\n", p.ToneOverall, p.ToneFormality)

	section := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s:\n", title)
		for _, l := range lines {
			fmt.Fprintf(&b, "- %s\n", l)
		}
	}
	section("Voice", p.Voice)
	section("Writing style", p.Style)
	section("Language", p.Language)
	section("Themes to draw on", p.Themes)
	section("Structure", p.Structure)

	if len(p.Openers) > 0 || len(p.Transitions) > 0 || len(p.Phrases) > 0 {
		b.WriteString("\nCharacteristic phrasing:\n")
		if len(p.Openers) > 0 {
			fmt.Fprintf(&b, "- Openers like: %s\n", quoteJoin(p.Openers))
		}
		if len(p.Transitions) > 0 {
			fmt.Fprintf(&b, "- Transitions like: %s\n", quoteJoin(p.Transitions))
		}
		if len(p.Phrases) > 0 {
			fmt.Fprintf(&b, "- Recurring phrases like: %s\n", quoteJoin(p.Phrases))
		}
	}

	ruleSection := func(title string, t store.RuleType) {
		rs := rules[t]
		if len(rs) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s:\n", title)
		for _, r := range rs {
			line := r.Value
			if r.Reason != "" {
				line += " (" + r.Reason + ")"
			}
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}
	ruleSection("NEVER use these words or phrases", store.RuleBannedWord)
	ruleSection("ALWAYS include", store.RuleRequiredElement)
	ruleSection("Style adjustments from past feedback", store.RuleStyleNote)
	ruleSection("Formatting rules", store.RuleFormatting)
	ruleSection("Other rules", store.RuleCustom)

	if kws := rules[store.RuleSEOKeyword]; len(kws) > 0 {
		b.WriteString("\nWork these keywords in naturally where they fit (never force them):\n")
		for _, r := range kws {
			fmt.Fprintf(&b, "- %s\n", r.Value)
		}
	}

	b.WriteString("\nReturn the post title on the first line, then a blank line, then the body.\n")
	return b.String()
}

func quoteJoin(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}

// userPrompt builds the per-request prompt: topic, word budget, voice
// excerpts from reference posts, topics already covered, and — on
// retries — what the previous attempt got wrong.
func userPrompt(topic string, references []refs.Post, covered []string, minWords, maxWords int, actx attemptContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a blog post about: %s\n\n", topic)
	fmt.Fprintf(&b, "The body must be between %d and %d words. This range is strict.\n", minWords, maxWords)

	if len(references) > 0 {
		b.WriteString("\nMatch the voice of these excerpts from published posts:\n")
		for _, p := range references {
			excerpt := p.Content
			if len(excerpt) > refExcerptLen {
				excerpt = excerpt[:refExcerptLen] + "..."
			}
			fmt.Fprintf(&b, "\n--- %s ---\n%s\n", p.Title, excerpt)
		}
	}

	if len(covered) > 0 {
		if len(covered) > coveredTopicsMax {
			covered = covered[len(covered)-coveredTopicsMax:]
		}
		fmt.Fprintf(&b, "\nTopics already covered (do not repeat them): %s\n", strings.Join(covered, "; "))
	}

	if actx.attempt > 1 {
		fmt.Fprintf(&b, "\nThis is attempt %d. The previous draft was rejected.\n", actx.attempt)
		if actx.prevWordCount > 0 && actx.prevWordCount < minWords {
			fmt.Fprintf(&b, "It was only %d words. Write a longer post of at least %d words.\n", actx.prevWordCount, minWords)
		}
		if actx.prevWordCount > maxWords {
			fmt.Fprintf(&b, "It ran to %d words. Tighten it to at most %d words.\n", actx.prevWordCount, maxWords)
		}
		if len(actx.prevIssues) > 0 {
			b.WriteString("Fix these problems:\n")
			for _, issue := range actx.prevIssues {
				fmt.Fprintf(&b, "- %s\n", issue)
			}
		}
	}

	return b.String()
}

// splitTitleBody separates the model's response into a title (first
// non-empty line, markdown heading markers stripped) and the body.
func splitTitleBody(response string) (title, body string) {
	lines := strings.Split(strings.TrimSpace(response), "\n")
	for i, line := range lines {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		title = strings.TrimSpace(strings.TrimLeft(t, "#"))
		title = strings.Trim(title, "*_ ")
		body = strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		return title, body
	}
	return "", ""
}
