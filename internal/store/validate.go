package store

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationResult is the outcome of checking a body against the active
// preferences. Issues are blocking; warnings are advisory.
type ValidationResult struct {
	Passed    bool     `json:"passed"`
	WordCount int      `json:"word_count"`
	Issues    []string `json:"issues,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// ValidateOptions tunes a validation run. The zero value applies the
// strict contract: duplicates are blocking issues.
type ValidateOptions struct {
	// SkipDuplicateCheck leaves duplicate detection to the caller.
	SkipDuplicateCheck bool
	// SimilarityThreshold for the duplicate check; values outside (0,1]
	// fall back to 0.9.
	SimilarityThreshold float64
}

// ValidateContent checks a body against every active rule with the
// default options.
func (s *Store) ValidateContent(body string) ValidationResult {
	return s.Validate(body, ValidateOptions{})
}

// Validate checks a body against the active banned words, required
// elements, and formatting rules, plus the duplicate index unless
// skipped.
func (s *Store) Validate(body string, opts ValidateOptions) ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := ValidationResult{WordCount: CountWords(body)}
	lower := strings.ToLower(body)

	for _, r := range s.activeRulesLocked(RuleBannedWord) {
		if containsWord(lower, r.Value) {
			res.Issues = append(res.Issues, fmt.Sprintf("contains banned word %q", r.Value))
		}
	}
	for _, r := range s.activeRulesLocked(RuleRequiredElement) {
		if !strings.Contains(lower, strings.ToLower(r.Value)) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("missing required element %q", r.Value))
		}
	}
	for _, r := range s.activeRulesLocked(RuleFormatting) {
		if issue := checkFormattingRule(r.Value, body); issue != "" {
			res.Issues = append(res.Issues, issue)
		}
	}

	if !opts.SkipDuplicateCheck {
		threshold := opts.SimilarityThreshold
		if threshold <= 0 || threshold > 1 {
			threshold = 0.9
		}
		if match, dup := s.isDuplicateLocked(body, threshold); dup {
			res.Issues = append(res.Issues,
				fmt.Sprintf("duplicate of %q (%s, %.0f%% overlap)", match.Title, match.Kind, match.Overlap*100))
		}
	}

	res.Passed = len(res.Issues) == 0
	return res
}

// containsWord matches value against lower on word boundaries, so a
// banned word like "cheap" does not flag "cheapest".
func containsWord(lower, value string) bool {
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(strings.ToLower(value)) + `\b`)
	if err != nil {
		return strings.Contains(lower, strings.ToLower(value))
	}
	return re.MatchString(lower)
}

// checkFormattingRule enforces the structural rules that can be checked
// mechanically: dash and bullet prohibitions. Other formatting rules are
// prompt guidance only.
func checkFormattingRule(rule, body string) string {
	r := strings.ToLower(rule)
	switch {
	case strings.Contains(r, "dash"):
		// Spaced hyphens count: " - " is how dashes usually appear in
		// generated prose.
		if strings.Contains(body, " - ") || strings.ContainsAny(body, "—–") {
			return fmt.Sprintf("violates formatting rule %q: contains a dash", rule)
		}
	case strings.Contains(r, "bullet"):
		for _, line := range strings.Split(body, "\n") {
			t := strings.TrimSpace(line)
			if strings.HasPrefix(t, "- ") || strings.HasPrefix(t, "* ") || strings.HasPrefix(t, "•") {
				return fmt.Sprintf("violates formatting rule %q: contains bullet points", rule)
			}
		}
	}
	return ""
}
