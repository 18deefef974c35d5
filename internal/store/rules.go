package store

import (
	"fmt"
	"strings"
	"time"
)

// RuleType identifies which preference list a rule belongs to.
type RuleType string

const (
	RuleBannedWord      RuleType = "banned_word"
	RuleRequiredElement RuleType = "required_element"
	RuleStyleNote       RuleType = "style_note"
	RuleFormatting      RuleType = "formatting_rule"
	RuleCustom          RuleType = "custom_rule"
	RuleSEOKeyword      RuleType = "seo_keyword"
)

var ruleTypes = []RuleType{
	RuleBannedWord, RuleRequiredElement, RuleStyleNote,
	RuleFormatting, RuleCustom, RuleSEOKeyword,
}

// ParseRuleType maps user-facing names (including the plural forms used
// on disk) to a RuleType.
func ParseRuleType(s string) (RuleType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "banned_word", "banned_words", "banned":
		return RuleBannedWord, nil
	case "required_element", "required_elements", "required":
		return RuleRequiredElement, nil
	case "style_note", "style_notes", "style":
		return RuleStyleNote, nil
	case "formatting_rule", "formatting_rules", "formatting":
		return RuleFormatting, nil
	case "custom_rule", "custom_rules", "custom":
		return RuleCustom, nil
	case "seo_keyword", "seo_keywords", "seo":
		return RuleSEOKeyword, nil
	}
	return "", fmt.Errorf("unknown rule type %q", s)
}

// Rule is one entry in a preference list. Removed rules stay in the list
// with Active false and RemovedAt set.
type Rule struct {
	Type      RuleType   `json:"-"`
	Value     string     `json:"value"`
	Reason    string     `json:"reason,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	Active    bool       `json:"active"`
	RemovedAt *time.Time `json:"removed_at,omitempty"`
	TimesUsed int        `json:"times_used,omitempty"`
	LastUsed  *time.Time `json:"last_used,omitempty"`
}

// preferencesDoc is the on-disk shape of preferences.json: one array per
// rule type, keyed by the plural list name.
type preferencesDoc struct {
	BannedWords      []Rule `json:"banned_words"`
	RequiredElements []Rule `json:"required_elements"`
	StyleNotes       []Rule `json:"style_notes"`
	FormattingRules  []Rule `json:"formatting_rules"`
	CustomRules      []Rule `json:"custom_rules"`
	SEOKeywords      []Rule `json:"seo_keywords"`
}

func newPreferencesDoc(rules []Rule) preferencesDoc {
	var doc preferencesDoc
	for _, r := range rules {
		switch r.Type {
		case RuleBannedWord:
			doc.BannedWords = append(doc.BannedWords, r)
		case RuleRequiredElement:
			doc.RequiredElements = append(doc.RequiredElements, r)
		case RuleStyleNote:
			doc.StyleNotes = append(doc.StyleNotes, r)
		case RuleFormatting:
			doc.FormattingRules = append(doc.FormattingRules, r)
		case RuleCustom:
			doc.CustomRules = append(doc.CustomRules, r)
		case RuleSEOKeyword:
			doc.SEOKeywords = append(doc.SEOKeywords, r)
		}
	}
	// Marshal empty lists as [] rather than null.
	if doc.BannedWords == nil {
		doc.BannedWords = []Rule{}
	}
	if doc.RequiredElements == nil {
		doc.RequiredElements = []Rule{}
	}
	if doc.StyleNotes == nil {
		doc.StyleNotes = []Rule{}
	}
	if doc.FormattingRules == nil {
		doc.FormattingRules = []Rule{}
	}
	if doc.CustomRules == nil {
		doc.CustomRules = []Rule{}
	}
	if doc.SEOKeywords == nil {
		doc.SEOKeywords = []Rule{}
	}
	return doc
}

func (d preferencesDoc) toRules() []Rule {
	tag := func(rs []Rule, t RuleType) []Rule {
		for i := range rs {
			rs[i].Type = t
		}
		return rs
	}
	var rules []Rule
	rules = append(rules, tag(d.BannedWords, RuleBannedWord)...)
	rules = append(rules, tag(d.RequiredElements, RuleRequiredElement)...)
	rules = append(rules, tag(d.StyleNotes, RuleStyleNote)...)
	rules = append(rules, tag(d.FormattingRules, RuleFormatting)...)
	rules = append(rules, tag(d.CustomRules, RuleCustom)...)
	rules = append(rules, tag(d.SEOKeywords, RuleSEOKeyword)...)
	return rules
}

// normalizeRuleValue trims whitespace; banned words are additionally
// lowercased so the match against content is case-insensitive.
func normalizeRuleValue(t RuleType, value string) string {
	v := strings.TrimSpace(value)
	if t == RuleBannedWord {
		v = strings.ToLower(v)
	}
	return v
}

func sameRuleValue(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// AddRule records a new preference. Adding a value that is already active
// within the same type is a no-op and returns the existing rule. Adding a
// value that was previously removed reactivates it in place.
func (s *Store) AddRule(t RuleType, value, reason string) (Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := normalizeRuleValue(t, value)
	if v == "" {
		return Rule{}, fmt.Errorf("store: empty rule value")
	}
	for i := range s.rules {
		r := &s.rules[i]
		if r.Type != t || !sameRuleValue(r.Value, v) {
			continue
		}
		if r.Active {
			return *r, nil
		}
		r.Active = true
		r.RemovedAt = nil
		if reason != "" {
			r.Reason = reason
		}
		s.logEvent("rule_readded", fmt.Sprintf("%s: %s", t, v))
		return *r, s.persist()
	}

	rule := Rule{
		Type:      t,
		Value:     v,
		Reason:    reason,
		CreatedAt: time.Now(),
		Active:    true,
	}
	s.rules = append(s.rules, rule)
	s.logEvent("rule_added", fmt.Sprintf("%s: %s", t, v))
	return rule, s.persist()
}

// RemoveRule deactivates every active rule of type t whose value matches,
// compared case- and whitespace-insensitively. It reports how many rules
// were deactivated; zero matches is not an error.
func (s *Store) RemoveRule(t RuleType, value string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for i := range s.rules {
		r := &s.rules[i]
		if r.Type != t || !r.Active || !sameRuleValue(r.Value, value) {
			continue
		}
		r.Active = false
		r.RemovedAt = &now
		removed++
	}
	if removed == 0 {
		return 0, nil
	}
	s.logEvent("rule_removed", fmt.Sprintf("%s: %s", t, strings.TrimSpace(value)))
	return removed, s.persist()
}

// ActiveRules returns the active rules of type t in insertion order.
func (s *Store) ActiveRules(t RuleType) []Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeRulesLocked(t)
}

func (s *Store) activeRulesLocked(t RuleType) []Rule {
	var out []Rule
	for _, r := range s.rules {
		if r.Type == t && r.Active {
			out = append(out, r)
		}
	}
	return out
}

// AllActiveRules returns every active rule grouped by type, in the fixed
// type order used on disk.
func (s *Store) AllActiveRules() map[RuleType][]Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[RuleType][]Rule, len(ruleTypes))
	for _, t := range ruleTypes {
		if rs := s.activeRulesLocked(t); len(rs) > 0 {
			out[t] = rs
		}
	}
	return out
}

// MarkKeywordUsed bumps the usage counter on an active SEO keyword after
// it appeared in accepted content.
func (s *Store) MarkKeywordUsed(keyword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for i := range s.rules {
		r := &s.rules[i]
		if r.Type != RuleSEOKeyword || !r.Active || !sameRuleValue(r.Value, keyword) {
			continue
		}
		r.TimesUsed++
		r.LastUsed = &now
		return s.persist()
	}
	return nil
}
