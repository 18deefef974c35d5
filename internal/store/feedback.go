package store

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LearningEvent is one entry in the append-only learning log.
type LearningEvent struct {
	ID          string    `json:"id"`
	EventType   string    `json:"event_type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

func newEventID() string {
	return uuid.NewString()
}

// LearningLog returns a copy of the learning log, oldest first.
func (s *Store) LearningLog() []LearningEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LearningEvent, len(s.log))
	copy(out, s.log)
	return out
}

var feedbackPatterns = []struct {
	re       *regexp.Regexp
	ruleType RuleType
}{
	{regexp.MustCompile(`(?i)\bnever use\s+["']?([^"'.,;]+)["']?`), RuleBannedWord},
	{regexp.MustCompile(`(?i)\bdo(?:n't| not) use\s+["']?([^"'.,;]+)["']?`), RuleBannedWord},
	{regexp.MustCompile(`(?i)\balways (?:include|mention)\s+["']?([^"'.,;]+)["']?`), RuleRequiredElement},
}

// LearnFromFeedback turns free-text feedback into durable rules.
// Recognized imperatives ("never use X", "always include Y") become
// banned words or required elements; anything else is kept as a style
// note or custom rule depending on feedbackType. The raw feedback is
// always recorded in the learning log. It returns the rules created.
func (s *Store) LearnFromFeedback(feedbackType, text string) ([]Rule, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	var learned []Rule
	matched := false
	for _, p := range feedbackPatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			value := strings.TrimSpace(m[1])
			if value == "" {
				continue
			}
			r, err := s.AddRule(p.ruleType, value, "learned from feedback")
			if err != nil {
				return learned, err
			}
			learned = append(learned, r)
			matched = true
		}
	}

	if !matched {
		t := RuleCustom
		if strings.EqualFold(feedbackType, "style") {
			t = RuleStyleNote
		}
		r, err := s.AddRule(t, text, "learned from feedback")
		if err != nil {
			return learned, err
		}
		learned = append(learned, r)
	}

	s.mu.Lock()
	s.logEvent("feedback", text)
	err := s.persist()
	s.mu.Unlock()
	return learned, err
}

// Stats is a snapshot of what the store has accumulated.
type Stats struct {
	TotalItems     int              `json:"total_items"`
	ItemsByStatus  map[Status]int   `json:"items_by_status"`
	ActiveRules    map[RuleType]int `json:"active_rules"`
	LearningEvents int              `json:"learning_events"`
	TopKeywords    []Rule           `json:"top_keywords,omitempty"`
}

// StoreStats summarizes items, rules, and learning activity.
func (s *Store) StoreStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		TotalItems:     len(s.items),
		ItemsByStatus:  make(map[Status]int),
		ActiveRules:    make(map[RuleType]int),
		LearningEvents: len(s.log),
	}
	for _, it := range s.items {
		st.ItemsByStatus[it.Status]++
	}
	for _, r := range s.rules {
		if r.Active {
			st.ActiveRules[r.Type]++
		}
	}
	for _, r := range s.activeRulesLocked(RuleSEOKeyword) {
		if r.TimesUsed > 0 {
			st.TopKeywords = append(st.TopKeywords, r)
		}
	}
	return st
}
