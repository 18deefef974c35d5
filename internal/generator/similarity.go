package generator

import "strings"

// similarityRatio measures how much of two texts is shared, as
// 2*M / (len(a)+len(b)) where M is the length of the longest common
// subsequence of their word tokens. 1.0 means identical token streams,
// 0.0 means nothing in common. Token-level keeps the comparison cheap
// for post-sized texts while still noticing single-word edits.
func similarityRatio(a, b string) float64 {
	wa := strings.Fields(a)
	wb := strings.Fields(b)
	if len(wa) == 0 && len(wb) == 0 {
		return 1.0
	}
	if len(wa) == 0 || len(wb) == 0 {
		return 0.0
	}
	m := lcsLength(wa, wb)
	return 2 * float64(m) / float64(len(wa)+len(wb))
}

// lcsLength computes the longest-common-subsequence length with a
// two-row table.
func lcsLength(a, b []string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// changeRatio is the fraction of the text a tweak altered.
func changeRatio(before, after string) float64 {
	return 1 - similarityRatio(before, after)
}
