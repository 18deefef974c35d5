package store

import (
	"crypto/rand"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Status is the lifecycle state of a generated item.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusApproved Status = "approved"
	StatusPosted   Status = "posted"
)

// ParseStatus validates a user-supplied status string.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusDraft:
		return StatusDraft, nil
	case StatusApproved:
		return StatusApproved, nil
	case StatusPosted:
		return StatusPosted, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Item is one generated post held by the store.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Topic       string    `json:"topic_requested"`
	ContentHash string    `json:"content_hash"`
	WordCount   int       `json:"word_count"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newItemID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// CountWords reports the number of whitespace-separated tokens in s. It
// is the single word-count definition used everywhere: stored items,
// validation results, and generation length checks.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// SaveItem stores a newly generated post as a draft and indexes its
// content hash for future duplicate checks. The assigned ID is returned
// on the item.
func (s *Store) SaveItem(title, body, topic string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	item := Item{
		ID:          newItemID(),
		Title:       strings.TrimSpace(title),
		Body:        body,
		Topic:       strings.TrimSpace(topic),
		ContentHash: hashContent(body),
		WordCount:   CountWords(body),
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.items = append(s.items, item)
	s.hashes = append(s.hashes, hashEntry{
		Hash:  item.ContentHash,
		ID:    item.ID,
		Title: item.Title,
	})
	s.logEvent("post_generated", fmt.Sprintf("%s (%d words)", item.Title, item.WordCount))
	return item, s.persist()
}

// ItemByID looks up an item; a short unambiguous ID prefix is accepted.
func (s *Store) ItemByID(id string) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.findItemLocked(id)
	if idx < 0 {
		return Item{}, false
	}
	return s.items[idx], true
}

func (s *Store) findItemLocked(id string) int {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1
	}
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	match := -1
	for i := range s.items {
		if strings.HasPrefix(s.items[i].ID, strings.ToUpper(id)) {
			if match >= 0 {
				return -1
			}
			match = i
		}
	}
	return match
}

// UpdateItemStatus moves an item to a new lifecycle state.
func (s *Store) UpdateItemStatus(id string, status Status) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findItemLocked(id)
	if idx < 0 {
		return Item{}, fmt.Errorf("store: no item %q", id)
	}
	it := &s.items[idx]
	it.Status = status
	it.UpdatedAt = time.Now()
	s.logEvent("status_changed", fmt.Sprintf("%s -> %s", it.ID, status))
	return *it, s.persist()
}

// UpdateItemContent replaces an item's body (and optionally title) after
// an edit, recomputing the word count and re-indexing the content hash.
func (s *Store) UpdateItemContent(id, title, body string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findItemLocked(id)
	if idx < 0 {
		return Item{}, fmt.Errorf("store: no item %q", id)
	}
	it := &s.items[idx]
	if strings.TrimSpace(title) != "" {
		it.Title = strings.TrimSpace(title)
	}
	it.Body = body
	it.WordCount = CountWords(body)
	it.UpdatedAt = time.Now()

	newHash := hashContent(body)
	if newHash != it.ContentHash {
		it.ContentHash = newHash
		s.hashes = append(s.hashes, hashEntry{Hash: newHash, ID: it.ID, Title: it.Title})
	}
	s.logEvent("content_updated", it.ID)
	return *it, s.persist()
}

// Items returns every stored item, newest first.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// ItemsByStatus returns items in the given state, most recently updated
// first.
func (s *Store) ItemsByStatus(status Status) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Item
	for _, it := range s.items {
		if it.Status == status {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// ApprovedItems returns items the user has signed off on, most recently
// updated first.
func (s *Store) ApprovedItems() []Item {
	return s.ItemsByStatus(StatusApproved)
}

// Titles lists the titles of all stored items in creation order.
func (s *Store) Titles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it.Title)
	}
	return out
}

// Topics lists the topics of previously generated items, oldest first,
// capped at limit (0 means all). Used to steer new posts away from
// ground already covered.
func (s *Store) Topics(limit int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, it := range s.items {
		if it.Topic != "" {
			out = append(out, it.Topic)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// Count reports the total number of stored items.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
