package storage

import (
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
)

// shortTokenThreshold is the pattern-token length (in bytes) below which the
// anchor checks fall back to exact equality instead of fuzzy matching, so a
// token like "go" cannot fuzzy-match arbitrary longer segments.
const shortTokenThreshold = 3

// Frecency multiplier boundaries.
const (
	oneHour = time.Hour
	oneDay  = 24 * time.Hour
	oneWeek = 7 * 24 * time.Hour
)

// patternMatchesSegments reports whether the stored segment sequence
// satisfies the pattern. The first and last pattern tokens are anchor-checked
// against the first and last stored segments (fuzzy for long tokens, exact
// for short ones), and every pattern token must then appear in the stored
// sequence in order, by exact equality, with unlimited gaps.
func patternMatchesSegments(segments, pattern []string) bool {
	if len(pattern) == 0 {
		return true
	}
	if len(segments) == 0 {
		return false
	}

	if !anchorMatches(pattern[0], segments[0]) {
		return false
	}
	if !anchorMatches(pattern[len(pattern)-1], segments[len(segments)-1]) {
		return false
	}

	idx := 0
	for _, tok := range pattern {
		found := -1
		for i, seg := range segments[idx:] {
			if seg == tok {
				found = i
				break
			}
		}
		if found < 0 {
			return false
		}
		idx += found + 1
	}

	return true
}

// anchorMatches applies the dual anchor rule: exact case-insensitive
// equality for short tokens, fuzzy subsequence match otherwise.
func anchorMatches(token, segment string) bool {
	if len(token) < shortTokenThreshold {
		return strings.EqualFold(token, segment)
	}
	return len(fuzzy.Find(token, []string{segment})) > 0
}

// calculateFrecency combines the raw visit score with a recency multiplier:
// visits within the last hour count 4x, the last day 2x, the last week 0.5x,
// and anything older 0.25x.
func calculateFrecency(score float64, lastAccessed, now time.Time) float64 {
	elapsed := now.Sub(lastAccessed)

	var multiplier float64
	switch {
	case elapsed < oneHour:
		multiplier = 4.0
	case elapsed < oneDay:
		multiplier = 2.0
	case elapsed < oneWeek:
		multiplier = 0.5
	default:
		multiplier = 0.25
	}

	return score * multiplier
}
