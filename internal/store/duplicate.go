package store

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// hashContent fingerprints a body for exact-duplicate detection. Case
// and whitespace differences hash identically.
func hashContent(body string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(body)), " ")
	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = struct{}{}
	}
	return set
}

// overlapRatio is the share of distinct words the two texts have in
// common, relative to the larger vocabulary: |A∩B| / max(|A|,|B|).
func overlapRatio(a, b string) float64 {
	sa, sb := wordSet(a), wordSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	small, large := sa, sb
	if len(small) > len(large) {
		small, large = large, small
	}
	common := 0
	for w := range small {
		if _, ok := large[w]; ok {
			common++
		}
	}
	return float64(common) / float64(len(large))
}

// DuplicateMatch describes why a body was judged a duplicate.
type DuplicateMatch struct {
	Kind    string  // "exact" or "similar"
	ItemID  string
	Title   string
	Overlap float64 // 1.0 for exact matches
}

// IsDuplicate checks a candidate body against everything the store has
// seen: first the content-hash index for exact matches, then a word-set
// overlap against each stored item at the given threshold.
func (s *Store) IsDuplicate(body string, threshold float64) (*DuplicateMatch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isDuplicateLocked(body, threshold)
}

func (s *Store) isDuplicateLocked(body string, threshold float64) (*DuplicateMatch, bool) {
	hash := hashContent(body)
	for _, h := range s.hashes {
		if h.Hash == hash {
			return &DuplicateMatch{Kind: "exact", ItemID: h.ID, Title: h.Title, Overlap: 1.0}, true
		}
	}
	for _, it := range s.items {
		if r := overlapRatio(body, it.Body); r > threshold {
			return &DuplicateMatch{Kind: "similar", ItemID: it.ID, Title: it.Title, Overlap: r}, true
		}
	}
	return nil, false
}
