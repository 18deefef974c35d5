package generator

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jayden9889/blogsmith/internal/brand"
	"github.com/jayden9889/blogsmith/internal/config"
	"github.com/jayden9889/blogsmith/internal/limiter"
	"github.com/jayden9889/blogsmith/internal/provider"
	"github.com/jayden9889/blogsmith/internal/refs"
	"github.com/jayden9889/blogsmith/internal/store"
)

// fakeProvider replays scripted responses and records every request.
type fakeProvider struct {
	responses []string
	errs      []error
	requests  []provider.Request
}

func (f *fakeProvider) Complete(_ context.Context, req provider.Request) (string, error) {
	f.requests = append(f.requests, req)
	i := len(f.requests) - 1
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", fmt.Errorf("fakeProvider: no response scripted for request %d", i+1)
}

func (f *fakeProvider) Name() string      { return "fake" }
func (f *fakeProvider) ModelName() string { return "fake-model" }

// fakeLimiter is always in a fixed state and records usage.
type fakeLimiter struct {
	allowed bool
	records []string
}

func (f *fakeLimiter) Check() (limiter.Status, error) {
	return limiter.Status{Allowed: f.allowed, Remaining: 1}, nil
}

func (f *fakeLimiter) Record(topic string) error {
	f.records = append(f.records, topic)
	return nil
}

func testConfig() config.GenerationConfig {
	return config.GenerationConfig{
		MinWords:            5,
		MaxWords:            50,
		TargetWords:         20,
		MaxAttempts:         3,
		SimilarityThreshold: 0.9,
		AllowDuplicates:     true,
	}
}

func newTestGenerator(t *testing.T, p provider.Provider, l UsageLimiter) (*Generator, *store.Store) {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	if l == nil {
		l = &fakeLimiter{allowed: true}
	}
	return New(p, s, l, brand.Default(), refs.NewLibrary(nil), testConfig()), s
}

func post(title string, words int) string {
	return title + "\n\n" + strings.TrimSpace(strings.Repeat("word ", words))
}

func TestReviewWordBoundsInclusive(t *testing.T) {
	g, _ := newTestGenerator(t, &fakeProvider{}, nil)

	cases := []struct {
		words int
		pass  bool
	}{
		{4, false},
		{5, true},
		{50, true},
		{51, false},
	}
	for _, tc := range cases {
		body := strings.TrimSpace(strings.Repeat("word ", tc.words))
		res := g.review(body, Options{AllowDuplicates: true})
		require.Equal(t, tc.pass, res.Passed, "%d words", tc.words)
		require.Equal(t, tc.words, res.WordCount)
	}
}

func TestGenerateAcceptsOnFirstTry(t *testing.T) {
	p := &fakeProvider{responses: []string{post("# School Ties", 10)}}
	lim := &fakeLimiter{allowed: true}
	g, s := newTestGenerator(t, p, lim)

	res, err := g.Generate(context.Background(), "school ties", Options{AllowDuplicates: true})
	require.NoError(t, err)
	require.Equal(t, StateAccepted, res.State)
	require.Equal(t, 1, res.Attempts)
	require.Equal(t, "School Ties", res.Item.Title)
	require.Equal(t, store.StatusDraft, res.Item.Status)
	require.Equal(t, 1, s.Count())
	require.Equal(t, []string{"school ties"}, lim.records)
}

func TestGenerateStopsAtAttemptBudget(t *testing.T) {
	// Every draft is one word short of the minimum.
	short := post("Title", 4)
	p := &fakeProvider{responses: []string{short, short, short}}
	g, s := newTestGenerator(t, p, nil)

	res, err := g.Generate(context.Background(), "scarves", Options{AllowDuplicates: true})
	require.NoError(t, err)
	require.Equal(t, StateRejected, res.State)
	require.Equal(t, 3, res.Attempts)
	require.Len(t, p.requests, 3)
	require.Contains(t, res.Issues[0], "too short")

	// Rejected drafts are never persisted.
	require.Zero(t, s.Count())
}

func TestGenerateRetryAdjustsPrompt(t *testing.T) {
	p := &fakeProvider{responses: []string{post("Title", 4), post("Title", 10)}}
	g, _ := newTestGenerator(t, p, nil)

	res, err := g.Generate(context.Background(), "club ties", Options{AllowDuplicates: true})
	require.NoError(t, err)
	require.Equal(t, StateAccepted, res.State)
	require.Equal(t, 2, res.Attempts)

	first, second := p.requests[0], p.requests[1]
	require.Equal(t, defaultTokenBudget, first.MaxTokens)
	require.NotContains(t, first.Prompt, "attempt")

	// The retry names the shortfall and raises the token budget.
	require.Equal(t, shortRetryTokenBudget, second.MaxTokens)
	require.Contains(t, second.Prompt, "attempt 2")
	require.Contains(t, second.Prompt, "only 4 words")
}

func TestGenerateLongDraftTightensBudget(t *testing.T) {
	p := &fakeProvider{responses: []string{post("Title", 60), post("Title", 10)}}
	g, _ := newTestGenerator(t, p, nil)

	_, err := g.Generate(context.Background(), "woven ties", Options{AllowDuplicates: true})
	require.NoError(t, err)
	require.Equal(t, longRetryTokenBudget, p.requests[1].MaxTokens)
	require.Contains(t, p.requests[1].Prompt, "at most 50 words")
}

func TestGenerateBannedWordForcesRetry(t *testing.T) {
	p := &fakeProvider{responses: []string{
		"Title\n\nour cheap ties are simply the best value anywhere",
		post("Title", 10),
	}}
	g, s := newTestGenerator(t, p, nil)
	_, err := s.AddRule(store.RuleBannedWord, "cheap", "")
	require.NoError(t, err)

	res, err := g.Generate(context.Background(), "value", Options{AllowDuplicates: true})
	require.NoError(t, err)
	require.Equal(t, StateAccepted, res.State)
	require.Equal(t, 2, res.Attempts)
	require.Contains(t, p.requests[1].Prompt, "banned word")
}

func TestGenerateBlockedByLimiter(t *testing.T) {
	p := &fakeProvider{}
	lim := &fakeLimiter{allowed: false}
	g, _ := newTestGenerator(t, p, lim)

	_, err := g.Generate(context.Background(), "ties", Options{})
	var lerr *limiter.LimitExceededError
	require.ErrorAs(t, err, &lerr)
	require.Empty(t, p.requests)
	require.Empty(t, lim.records)
}

func TestGenerateProviderErrorBurnsAttempt(t *testing.T) {
	p := &fakeProvider{
		errs:      []error{fmt.Errorf("boom"), nil},
		responses: []string{"", post("Title", 10)},
	}
	g, _ := newTestGenerator(t, p, nil)

	res, err := g.Generate(context.Background(), "ties", Options{AllowDuplicates: true})
	require.NoError(t, err)
	require.Equal(t, StateAccepted, res.State)
	require.Equal(t, 2, res.Attempts)
}

func TestGenerateAllProviderErrors(t *testing.T) {
	boom := fmt.Errorf("boom")
	p := &fakeProvider{errs: []error{boom, boom, boom}, responses: []string{"", "", ""}}
	g, _ := newTestGenerator(t, p, nil)

	_, err := g.Generate(context.Background(), "ties", Options{})
	require.ErrorIs(t, err, boom)
}

func TestGenerateDuplicateBlockedWhenStrict(t *testing.T) {
	body := strings.TrimSpace(strings.Repeat("word ", 10))
	p := &fakeProvider{responses: []string{"Title\n\n" + body, "Title\n\n" + body, "Title\n\n" + body}}
	g, s := newTestGenerator(t, p, nil)
	_, err := s.SaveItem("Existing", body, "ties")
	require.NoError(t, err)

	res, err := g.Generate(context.Background(), "ties", Options{AllowDuplicates: false})
	require.NoError(t, err)
	require.Equal(t, StateRejected, res.State)
	require.Contains(t, strings.Join(res.Issues, "; "), "duplicate")
}

func TestGenerateMarksKeywordsUsed(t *testing.T) {
	p := &fakeProvider{responses: []string{"Title\n\nour custom ties line is the best thing we make today"}}
	g, s := newTestGenerator(t, p, nil)
	_, err := s.AddRule(store.RuleSEOKeyword, "custom ties", "")
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), "ties", Options{AllowDuplicates: true})
	require.NoError(t, err)
	kws := s.ActiveRules(store.RuleSEOKeyword)
	require.Equal(t, 1, kws[0].TimesUsed)
}

func TestSplitTitleBody(t *testing.T) {
	title, body := splitTitleBody("# The Craft of Ties\n\nFirst paragraph.\nSecond line.")
	require.Equal(t, "The Craft of Ties", title)
	require.Equal(t, "First paragraph.\nSecond line.", body)

	title, body = splitTitleBody("\n\n## **Bold Title**\nBody right after.")
	require.Equal(t, "Bold Title", title)
	require.Equal(t, "Body right after.", body)

	title, body = splitTitleBody("Only a title")
	require.Equal(t, "Only a title", title)
	require.Empty(t, body)
}

func TestSystemPromptLayersRules(t *testing.T) {
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	_, err = s.AddRule(store.RuleBannedWord, "cheap", "sounds low-end")
	require.NoError(t, err)
	_, err = s.AddRule(store.RuleSEOKeyword, "school ties", "")
	require.NoError(t, err)

	prompt := systemPrompt(brand.Default(), s.AllActiveRules())
	require.Contains(t, prompt, "Loomcraft")
	require.Contains(t, prompt, "NEVER use these words")
	require.Contains(t, prompt, "cheap (sounds low-end)")
	require.Contains(t, prompt, "school ties")
}
