package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testNow is the fixed "current time" used by test stores.
var testNow = time.Unix(1_700_000_000, 0)

// openTestStore creates a migrated in-memory store with a fixed clock.
func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	runner := NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	store, err := NewSQLiteStore(db, WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

// --- AddVisit ---

func TestAddVisit_CreatesNewRecord(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.AddVisit(ctx, "https://github.com/rust-lang/rust", testNow)
	require.NoError(t, err)

	var count int64
	require.NoError(t, store.db.QueryRow(
		"SELECT COUNT(*) FROM urls WHERE full_url = ?",
		"https://github.com/rust-lang/rust",
	).Scan(&count))
	assert.Equal(t, int64(1), count)
}

func TestAddVisit_IncrementsScoreOnRepeat(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	url := "https://github.com/rust-lang/rust"

	require.NoError(t, store.AddVisit(ctx, url, testNow))
	require.NoError(t, store.AddVisit(ctx, url, testNow))
	require.NoError(t, store.AddVisit(ctx, url, testNow))

	var score float64
	require.NoError(t, store.db.QueryRow(
		"SELECT score FROM urls WHERE full_url = ?", url,
	).Scan(&score))
	assert.Equal(t, 3.0, score)

	var count int64
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM urls").Scan(&count))
	assert.Equal(t, int64(1), count, "repeat visits must not duplicate the record")
}

func TestAddVisit_UpdatesLastAccessed(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	url := "https://github.com/rust-lang/rust"

	require.NoError(t, store.AddVisit(ctx, url, time.Unix(1000, 0)))
	require.NoError(t, store.AddVisit(ctx, url, time.Unix(2000, 0)))

	var accessed int64
	require.NoError(t, store.db.QueryRow(
		"SELECT last_accessed FROM urls WHERE full_url = ?", url,
	).Scan(&accessed))
	assert.Equal(t, int64(2000), accessed)
}

func TestAddVisit_StoresSegmentsAsJSON(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	url := "https://github.com/rust-lang/rust/issues"

	require.NoError(t, store.AddVisit(ctx, url, testNow))

	var segmentsJSON, last string
	require.NoError(t, store.db.QueryRow(
		"SELECT segments, last_segment FROM urls WHERE full_url = ?", url,
	).Scan(&segmentsJSON, &last))

	var segments []string
	require.NoError(t, json.Unmarshal([]byte(segmentsJSON), &segments))
	assert.Equal(t, []string{"github", "rust-lang", "rust", "issues"}, segments)
	assert.Equal(t, "issues", last)
}

func TestAddVisit_NormalizesSegmentsToLowercase(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	url := "https://GitHub.com/Rust-Lang/RUST"

	require.NoError(t, store.AddVisit(ctx, url, testNow))

	var segmentsJSON string
	require.NoError(t, store.db.QueryRow(
		"SELECT segments FROM urls WHERE full_url = ?", url,
	).Scan(&segmentsJSON))

	var segments []string
	require.NoError(t, json.Unmarshal([]byte(segmentsJSON), &segments))
	assert.Equal(t, []string{"github", "rust-lang", "rust"}, segments)
}

func TestAddVisit_HostOnlyURL(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddVisit(ctx, "https://github.com", testNow))

	var last string
	require.NoError(t, store.db.QueryRow(
		"SELECT last_segment FROM urls WHERE full_url = ?", "https://github.com",
	).Scan(&last))
	assert.Equal(t, "github", last)
}

func TestAddVisit_MalformedURL(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.AddVisit(ctx, "not-a-valid-url", testNow)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedURL)
}

// --- FuzzyMatch ---

func TestFuzzyMatch_ReturnsMatchingURLs(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddVisit(ctx, "https://github.com/rust-lang/rust", testNow))
	require.NoError(t, store.AddVisit(ctx, "https://github.com/microsoft/rust", testNow))
	require.NoError(t, store.AddVisit(ctx, "https://gitlab.com/rust-lang/rust", testNow))

	matches, err := store.FuzzyMatch(ctx, []string{"github", "rust"})
	require.NoError(t, err)

	// Both github URLs match; gitlab fails the first-segment anchor.
	require.Len(t, matches, 2)
	urls := []string{matches[0].URL, matches[1].URL}
	assert.Contains(t, urls, "https://github.com/rust-lang/rust")
	assert.Contains(t, urls, "https://github.com/microsoft/rust")
}

func TestFuzzyMatch_RespectsSegmentOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddVisit(ctx, "https://github.com/rust-lang/rust", testNow))
	require.NoError(t, store.AddVisit(ctx, "https://github.com/rust/issues", testNow))

	matches, err := store.FuzzyMatch(ctx, []string{"github", "rust-lang", "rust"})
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, "https://github.com/rust-lang/rust", matches[0].URL)
}

func TestFuzzyMatch_SortsByFrecency(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	oldTime := testNow.Add(-30 * 24 * time.Hour)
	recentTime := testNow.Add(-10 * time.Minute)

	// Visited three times, but a month ago.
	for i := 0; i < 3; i++ {
		require.NoError(t, store.AddVisit(ctx, "https://github.com/old/rust", oldTime))
	}
	// Visited once, minutes ago.
	require.NoError(t, store.AddVisit(ctx, "https://github.com/new/rust", recentTime))

	matches, err := store.FuzzyMatch(ctx, []string{"github", "rust"})
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, "https://github.com/new/rust", matches[0].URL,
		"recency boost should outweigh the higher raw score")
}

func TestFuzzyMatch_StoredCaseDoesNotMatter(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	// Stored segments are lowercased at insert time, so a lowercase pattern
	// matches a URL that was visited with uppercase path components.
	require.NoError(t, store.AddVisit(ctx, "https://github.com/Rust-Lang/RUST", testNow))

	matches, err := store.FuzzyMatch(ctx, []string{"github", "rust"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
}

func TestFuzzyMatch_EmptyPatternShortCircuits(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddVisit(ctx, "https://github.com/rust-lang/rust", testNow))

	matches, err := store.FuzzyMatch(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFuzzyMatch_NoMatches(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddVisit(ctx, "https://github.com/rust-lang/rust", testNow))

	matches, err := store.FuzzyMatch(ctx, []string{"gitlab", "foo"})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

// --- BestMatch ---

func TestBestMatch_ReturnsTopCandidate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddVisit(ctx, "https://github.com/rust-lang/rust", testNow))

	url, err := store.BestMatch(ctx, []string{"github", "rust"})
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/rust-lang/rust", url)
}

func TestBestMatch_NoMatchIsDistinguishable(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.BestMatch(ctx, []string{"github", "rust"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoMatch)
	assert.NotErrorIs(t, err, ErrMalformedURL)
}

// --- TopByUsage ---

func TestTopByUsage_OrdersByScore(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddVisit(ctx, "https://github.com/low", testNow))
	for i := 0; i < 3; i++ {
		require.NoError(t, store.AddVisit(ctx, "https://github.com/high", testNow))
	}

	entries, err := store.TopByUsage(ctx, 5)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "https://github.com/high", entries[0].URL)
	assert.Equal(t, 3.0, entries[0].Score)
}

func TestTopByUsage_RespectsLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddVisit(ctx, "https://example.com/1", testNow))
	require.NoError(t, store.AddVisit(ctx, "https://example.com/2", testNow))
	require.NoError(t, store.AddVisit(ctx, "https://example.com/3", testNow))

	entries, err := store.TopByUsage(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestTopByUsage_EmptyDB(t *testing.T) {
	store := openTestStore(t)

	entries, err := store.TopByUsage(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// --- PruneByAge ---

func TestPruneByAge_RemovesExactlyTheOldRecords(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddVisit(ctx, "https://github.com/old", testNow.Add(-2*time.Hour)))
	require.NoError(t, store.AddVisit(ctx, "https://github.com/recent", testNow.Add(-10*time.Minute)))

	removed, err := store.PruneByAge(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	var remaining string
	require.NoError(t, store.db.QueryRow("SELECT full_url FROM urls").Scan(&remaining))
	assert.Equal(t, "https://github.com/recent", remaining)
}

func TestPruneByAge_NothingOldEnough(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddVisit(ctx, "https://github.com/recent", testNow))

	removed, err := store.PruneByAge(ctx, 365*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}

func TestPruneByAge_EmptyDB(t *testing.T) {
	store := openTestStore(t)

	removed, err := store.PruneByAge(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}

// --- PruneByURLPattern ---

func TestPruneByURLPattern_ContainsMatch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddVisit(ctx, "https://github.com/rust-lang/rust", testNow))
	require.NoError(t, store.AddVisit(ctx, "https://github.com/microsoft/typescript", testNow))
	require.NoError(t, store.AddVisit(ctx, "https://gitlab.com/foo/bar", testNow))

	removed, err := store.PruneByURLPattern(ctx, `github\.com`)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	var remaining string
	require.NoError(t, store.db.QueryRow("SELECT full_url FROM urls").Scan(&remaining))
	assert.Equal(t, "https://gitlab.com/foo/bar", remaining)
}

func TestPruneByURLPattern_ExactMatch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddVisit(ctx, "https://github.com/", testNow))
	require.NoError(t, store.AddVisit(ctx, "https://github.com/rust", testNow))

	removed, err := store.PruneByURLPattern(ctx, `^https://github\.com/$`)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	var remaining string
	require.NoError(t, store.db.QueryRow("SELECT full_url FROM urls").Scan(&remaining))
	assert.Equal(t, "https://github.com/rust", remaining)
}

func TestPruneByURLPattern_PrefixMatch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddVisit(ctx, "https://github.com/rust", testNow))
	require.NoError(t, store.AddVisit(ctx, "https://github.com/microsoft", testNow))
	require.NoError(t, store.AddVisit(ctx, "https://gitlab.com/foo", testNow))

	removed, err := store.PruneByURLPattern(ctx, `^https://github\.com/`)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
}

func TestPruneByURLPattern_SuffixMatch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddVisit(ctx, "https://github.com/rust-lang/rust", testNow))
	require.NoError(t, store.AddVisit(ctx, "https://github.com/microsoft/rust", testNow))
	require.NoError(t, store.AddVisit(ctx, "https://github.com/other/project", testNow))

	removed, err := store.PruneByURLPattern(ctx, "/rust$")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
}

func TestPruneByURLPattern_NoMatches(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddVisit(ctx, "https://github.com/rust", testNow))

	removed, err := store.PruneByURLPattern(ctx, "gitlab.com")
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}

func TestPatternToLike(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{`^https://github\.com/$`, "https://github.com/"},
		{`^https://github\.com/`, "https://github.com/%"},
		{`/rust$`, "%/rust"},
		{`github\.com`, "%github.com%"},
		{"rust", "%rust%"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, patternToLike(tc.pattern), "pattern %q", tc.pattern)
	}
}

// --- Stats ---

func TestStats_EmptyDB(t *testing.T) {
	store := openTestStore(t)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalURLs)
	assert.Equal(t, 0.0, stats.TotalVisits)
	assert.True(t, stats.OldestVisit.IsZero())
}

func TestStats_WithData(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddVisit(ctx, "https://github.com/a", time.Unix(1000, 0)))
	require.NoError(t, store.AddVisit(ctx, "https://github.com/b", time.Unix(2000, 0)))
	require.NoError(t, store.AddVisit(ctx, "https://github.com/b", time.Unix(3000, 0)))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalURLs)
	assert.Equal(t, 3.0, stats.TotalVisits)
	assert.Equal(t, time.Unix(1000, 0), stats.OldestVisit)
	assert.Equal(t, time.Unix(3000, 0), stats.NewestVisit)
}

// --- Close ---

func TestClose(t *testing.T) {
	store := openTestStore(t)
	assert.NoError(t, store.Close())
}
