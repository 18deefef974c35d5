// Package generator runs the generate-review-retry loop: prompt the
// model, check the draft against the preference store and the word
// budget, and retry with targeted corrections until the draft passes or
// the attempt budget runs out.
package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/jayden9889/blogsmith/internal/brand"
	"github.com/jayden9889/blogsmith/internal/config"
	"github.com/jayden9889/blogsmith/internal/limiter"
	"github.com/jayden9889/blogsmith/internal/provider"
	"github.com/jayden9889/blogsmith/internal/refs"
	"github.com/jayden9889/blogsmith/internal/store"
)

// UsageLimiter is the slice of the limiter the generator needs.
type UsageLimiter interface {
	Check() (limiter.Status, error)
	Record(topic string) error
}

// State classifies the outcome of a generation run.
type State string

const (
	StateAccepted     State = "accepted"
	StateWithWarnings State = "accepted_with_warnings"
	StateRejected     State = "rejected"
)

// Result is the outcome of Generate. On acceptance Item holds the saved
// draft; on rejection Title and Body carry the last candidate so the
// caller can show what was tried, and Issues explains the rejection.
type Result struct {
	State    State
	Item     store.Item
	Title    string
	Body     string
	Attempts int
	Issues   []string
	Warnings []string
}

// Options tunes a single generation run.
type Options struct {
	// AllowDuplicates skips the blocking duplicate check during review.
	// The store itself still flags duplicates to direct callers.
	AllowDuplicates bool
}

// Generator wires the provider, store, limiter, brand profile, and
// reference library into the generation loop.
type Generator struct {
	provider provider.Provider
	store    *store.Store
	limiter  UsageLimiter
	profile  *brand.Profile
	library  *refs.Library
	cfg      config.GenerationConfig
}

func New(p provider.Provider, s *store.Store, l UsageLimiter, profile *brand.Profile, library *refs.Library, cfg config.GenerationConfig) *Generator {
	return &Generator{
		provider: p,
		store:    s,
		limiter:  l,
		profile:  profile,
		library:  library,
		cfg:      cfg,
	}
}

// Generate produces a post about topic. It consumes one usage slot per
// call, whether or not a draft is accepted. Within the call it makes up
// to MaxAttempts model requests; each rejected draft feeds its word
// count and issues into the next prompt. Only an accepted draft is
// persisted.
func (g *Generator) Generate(ctx context.Context, topic string, opts Options) (Result, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Result{}, fmt.Errorf("generate: empty topic")
	}

	st, err := g.limiter.Check()
	if err != nil {
		return Result{}, err
	}
	if !st.Allowed {
		return Result{}, &limiter.LimitExceededError{Max: st.Used, ResetAt: st.ResetAt}
	}
	if err := g.limiter.Record(topic); err != nil {
		return Result{}, err
	}

	rules := g.store.AllActiveRules()
	system := systemPrompt(g.profile, rules)
	references := g.library.Select(topic, 3)
	covered := g.store.Topics(coveredTopicsMax)

	res := Result{}
	actx := attemptContext{}
	var lastErr error

	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		actx.attempt = attempt
		res.Attempts = attempt

		req := provider.Request{
			System:    system,
			Prompt:    userPrompt(topic, references, covered, g.cfg.MinWords, g.cfg.MaxWords, actx),
			MaxTokens: actx.tokenBudget(g.cfg.MinWords, g.cfg.MaxWords),
		}

		response, err := g.provider.Complete(ctx, req)
		if err != nil {
			// A provider failure burns the attempt like a failed review.
			lastErr = err
			actx.prevWordCount = 0
			actx.prevIssues = []string{"the previous request failed, produce a complete post"}
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			continue
		}
		lastErr = nil

		title, body := splitTitleBody(response)
		if body == "" {
			actx.prevWordCount = 0
			actx.prevIssues = []string{"response had no body text"}
			res.Issues = actx.prevIssues
			continue
		}

		review := g.review(body, opts)
		res.Title, res.Body = title, body
		res.Issues = review.Issues
		res.Warnings = review.Warnings

		if review.Passed {
			item, err := g.store.SaveItem(title, body, topic)
			if err != nil {
				return res, err
			}
			g.markKeywordsUsed(body)
			res.Item = item
			res.State = StateAccepted
			if len(review.Warnings) > 0 {
				res.State = StateWithWarnings
			}
			return res, nil
		}

		actx.prevWordCount = review.WordCount
		actx.prevIssues = review.Issues
	}

	if lastErr != nil {
		return res, fmt.Errorf("generate: all %d attempts failed: %w", g.cfg.MaxAttempts, lastErr)
	}
	res.State = StateRejected
	return res, nil
}

// review merges the store's preference validation with the word budget.
func (g *Generator) review(body string, opts Options) store.ValidationResult {
	res := g.store.Validate(body, store.ValidateOptions{
		SkipDuplicateCheck:  opts.AllowDuplicates,
		SimilarityThreshold: g.cfg.SimilarityThreshold,
	})
	if res.WordCount < g.cfg.MinWords {
		res.Issues = append(res.Issues, fmt.Sprintf("too short: %d words, need at least %d", res.WordCount, g.cfg.MinWords))
	}
	if res.WordCount > g.cfg.MaxWords {
		res.Issues = append(res.Issues, fmt.Sprintf("too long: %d words, limit is %d", res.WordCount, g.cfg.MaxWords))
	}
	res.Passed = len(res.Issues) == 0
	return res
}

// markKeywordsUsed bumps usage counters for every active SEO keyword
// that made it into the accepted body.
func (g *Generator) markKeywordsUsed(body string) {
	lower := strings.ToLower(body)
	for _, r := range g.store.ActiveRules(store.RuleSEOKeyword) {
		if strings.Contains(lower, strings.ToLower(r.Value)) {
			// Counter updates are best-effort; the post is already saved.
			_ = g.store.MarkKeywordUsed(r.Value)
		}
	}
}
