// Package store is the persistent memory of the blog writer: content
// rules, every generated post, the learning log, and the content-hash
// index for duplicate detection. Nothing is ever physically deleted —
// removals flip an active flag so history survives.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	preferencesFile = "preferences.json"
	itemsFile       = "generated_posts.json"
	learningFile    = "learning_log.json"
	hashesFile      = "content_hashes.json"
)

// Store owns the in-memory state and its JSON files under dir. A single
// process owns the directory; there is no cross-process locking.
type Store struct {
	mu     sync.Mutex
	dir    string
	rules  []Rule
	items  []Item
	hashes []hashEntry
	log    []LearningEvent
}

type hashEntry struct {
	Hash  string `json:"hash"`
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Open loads (or initializes) a store rooted at dir. Missing files start
// empty; files that exist but fail schema validation are an error rather
// than a silent reset.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", dir, err)
	}
	s := &Store{dir: dir}

	var prefs preferencesDoc
	if err := s.loadFile(preferencesFile, &prefs); err != nil {
		return nil, err
	}
	s.rules = prefs.toRules()

	if err := s.loadFile(itemsFile, &s.items); err != nil {
		return nil, err
	}
	if err := s.loadFile(hashesFile, &s.hashes); err != nil {
		return nil, err
	}
	if err := s.loadFile(learningFile, &s.log); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the directory the store persists into.
func (s *Store) Dir() string { return s.dir }

func (s *Store) loadFile(name string, out any) error {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("store: read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := validateDocument(name, data); err != nil {
		return fmt.Errorf("store: %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("store: parse %s: %w", name, err)
	}
	return nil
}

// persist writes the full state to disk. Each file is written to a temp
// file in the same directory and renamed over the old one, so a crash
// mid-write never leaves a half-written file behind.
func (s *Store) persist() error {
	files := map[string]any{
		preferencesFile: newPreferencesDoc(s.rules),
		itemsFile:       s.items,
		hashesFile:      s.hashes,
		learningFile:    s.log,
	}
	for name, v := range files {
		if err := s.writeFile(name, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writeFile(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("store: write %s: %w", name, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("store: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: write %s: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: write %s: %w", name, err)
	}
	return nil
}

func (s *Store) logEvent(eventType, description string) {
	s.log = append(s.log, LearningEvent{
		ID:          newEventID(),
		EventType:   eventType,
		Description: description,
		Timestamp:   time.Now(),
	})
}
