package storage

import "time"

// Match is a single fuzzy-match candidate with its computed frecency.
type Match struct {
	URL          string
	Frecency     float64
	LastAccessed time.Time
}

// UsageEntry pairs a URL with its raw visit score.
type UsageEntry struct {
	URL          string
	Score        float64
	LastAccessed time.Time
}

// Stats holds aggregate statistics about the history database.
type Stats struct {
	TotalURLs   int64
	TotalVisits float64
	OldestVisit time.Time
	NewestVisit time.Time
}
