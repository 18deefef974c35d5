// Package limiter enforces the posts-per-window usage cap. Windows are
// fixed wall-clock slots anchored at local midnight (with the default
// 12-hour window: 00:00 and 12:00), not rolling intervals, so the
// counter resets at predictable times of day.
package limiter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Status reports whether another post may be generated right now.
type Status struct {
	Allowed   bool      `json:"allowed"`
	Used      int       `json:"used"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
	Message   string    `json:"message,omitempty"`
}

// LimitExceededError is returned by callers that treat an exhausted window as a
// failure.
type LimitExceededError struct {
	Max     int
	ResetAt time.Time
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("usage limit reached (%d posts this window), resets %s",
		e.Max, e.ResetAt.Format("15:04"))
}

type windowState struct {
	WindowStart    time.Time `json:"window_start"`
	PostsGenerated int       `json:"posts_generated"`
	Topics         []string  `json:"topics,omitempty"`
}

type usageDoc struct {
	CurrentWindow windowState   `json:"current_window"`
	History       []windowState `json:"history,omitempty"`
	AdminResetAt  *time.Time    `json:"admin_reset_at,omitempty"`
}

// FileLimiter tracks usage in a JSON file next to the store files.
type FileLimiter struct {
	mu       sync.Mutex
	path     string
	maxPosts int
	window   time.Duration
	now      func() time.Time
}

// New creates a limiter persisting to usage_tracking.json under dataDir.
func New(dataDir string, maxPosts, windowHours int) *FileLimiter {
	if maxPosts <= 0 {
		maxPosts = 10
	}
	if windowHours <= 0 || windowHours > 24 {
		windowHours = 12
	}
	return &FileLimiter{
		path:     filepath.Join(dataDir, "usage_tracking.json"),
		maxPosts: maxPosts,
		window:   time.Duration(windowHours) * time.Hour,
		now:      time.Now,
	}
}

// windowStart returns the start of the slot containing t, anchored at
// local midnight.
func (l *FileLimiter) windowStart(t time.Time) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	elapsed := t.Sub(midnight)
	return midnight.Add(elapsed.Truncate(l.window))
}

func (l *FileLimiter) load() (usageDoc, error) {
	var doc usageDoc
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return doc, fmt.Errorf("limiter: read %s: %w", l.path, err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("limiter: parse %s: %w", l.path, err)
	}
	return doc, nil
}

func (l *FileLimiter) save(doc usageDoc) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("limiter: marshal: %w", err)
	}
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("limiter: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "usage.tmp-*")
	if err != nil {
		return fmt.Errorf("limiter: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("limiter: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("limiter: write: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("limiter: write: %w", err)
	}
	return nil
}

// roll advances doc to the window containing now, archiving the old
// window if it saw any posts. An admin reset from before the current
// window no longer applies after rolling.
func (l *FileLimiter) roll(doc *usageDoc, now time.Time) {
	start := l.windowStart(now)
	if doc.CurrentWindow.WindowStart.Equal(start) {
		return
	}
	if doc.CurrentWindow.PostsGenerated > 0 {
		doc.History = append(doc.History, doc.CurrentWindow)
	}
	doc.CurrentWindow = windowState{WindowStart: start}
	doc.AdminResetAt = nil
}

// Check reports the current window's remaining budget without consuming
// any of it.
func (l *FileLimiter) Check() (Status, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	doc, err := l.load()
	if err != nil {
		return Status{}, err
	}
	now := l.now()
	l.roll(&doc, now)

	used := doc.CurrentWindow.PostsGenerated
	resetAt := doc.CurrentWindow.WindowStart.Add(l.window)
	st := Status{
		Allowed:   used < l.maxPosts,
		Used:      used,
		Remaining: l.maxPosts - used,
		ResetAt:   resetAt,
	}
	if st.Remaining < 0 {
		st.Remaining = 0
	}
	if !st.Allowed {
		st.Message = (&LimitExceededError{Max: l.maxPosts, ResetAt: resetAt}).Error()
	}
	return st, nil
}

// Record consumes one slot of the current window. It is called once per
// generation request, whether or not the attempt produced an accepted
// post.
func (l *FileLimiter) Record(topic string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	doc, err := l.load()
	if err != nil {
		return err
	}
	l.roll(&doc, l.now())
	doc.CurrentWindow.PostsGenerated++
	if topic != "" {
		doc.CurrentWindow.Topics = append(doc.CurrentWindow.Topics, topic)
	}
	return l.save(doc)
}

// Reset zeroes the current window's counter without touching history.
func (l *FileLimiter) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	doc, err := l.load()
	if err != nil {
		return err
	}
	now := l.now()
	l.roll(&doc, now)
	doc.CurrentWindow.PostsGenerated = 0
	doc.CurrentWindow.Topics = nil
	doc.AdminResetAt = &now
	return l.save(doc)
}

// Stats summarizes current and historical usage.
type UsageStats struct {
	Current      Status     `json:"current"`
	WindowsSeen  int        `json:"windows_seen"`
	TotalPosts   int        `json:"total_posts"`
	AdminResetAt *time.Time `json:"admin_reset_at,omitempty"`
}

func (l *FileLimiter) Stats() (UsageStats, error) {
	st, err := l.Check()
	if err != nil {
		return UsageStats{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	doc, err := l.load()
	if err != nil {
		return UsageStats{}, err
	}
	total := doc.CurrentWindow.PostsGenerated
	for _, w := range doc.History {
		total += w.PostsGenerated
	}
	return UsageStats{
		Current:      st,
		WindowsSeen:  len(doc.History) + 1,
		TotalPosts:   total,
		AdminResetAt: doc.AdminResetAt,
	}, nil
}
