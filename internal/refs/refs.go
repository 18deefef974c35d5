// Package refs manages the library of previously published posts used
// as style references when building generation prompts.
package refs

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
)

// Post is a published post used for tone matching.
type Post struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
}

// Library holds the reference posts loaded at startup.
type Library struct {
	posts []Post
}

// Load reads a JSON array of posts from disk. A missing file yields an
// empty library — reference posts are an enhancement, not a requirement.
func Load(path string) (*Library, error) {
	if path == "" {
		return &Library{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Library{}, nil
		}
		return nil, fmt.Errorf("reference posts: %w", err)
	}
	var posts []Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("reference posts %s: %w", path, err)
	}
	return &Library{posts: posts}, nil
}

// NewLibrary builds a library from in-memory posts. Used by tests and by
// callers that source posts elsewhere.
func NewLibrary(posts []Post) *Library {
	return &Library{posts: posts}
}

func (l *Library) Len() int { return len(l.posts) }

// Select returns up to n posts scored by lexical overlap between the
// topic and each post's title plus the first hundred words of its body.
// When nothing overlaps it falls back to random picks so the prompt
// always carries some voice examples.
func (l *Library) Select(topic string, n int) []Post {
	if len(l.posts) == 0 || n <= 0 {
		return nil
	}

	topicWords := wordSet(topic)

	type scored struct {
		overlap int
		post    Post
	}
	candidates := make([]scored, 0, len(l.posts))
	for _, p := range l.posts {
		seen := wordSet(p.Title)
		for i, w := range strings.Fields(strings.ToLower(p.Content)) {
			if i >= 100 {
				break
			}
			seen[w] = true
		}
		overlap := 0
		for w := range topicWords {
			if seen[w] {
				overlap++
			}
		}
		candidates = append(candidates, scored{overlap: overlap, post: p})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].overlap > candidates[j].overlap
	})

	if n > len(candidates) {
		n = len(candidates)
	}

	if candidates[0].overlap > 0 {
		out := make([]Post, 0, n)
		for _, c := range candidates[:n] {
			out = append(out, c.post)
		}
		return out
	}

	// No lexical overlap at all: random sample
	idx := rand.Perm(len(l.posts))
	out := make([]Post, 0, n)
	for _, i := range idx[:n] {
		out = append(out, l.posts[i])
	}
	return out
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = true
	}
	return set
}
