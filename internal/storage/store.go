package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/idiomattic/otot/internal/logger"
)

// Store defines the interface for visit-history operations.
type Store interface {
	AddVisit(ctx context.Context, url string, visitedAt time.Time) error
	FuzzyMatch(ctx context.Context, pattern []string) ([]Match, error)
	BestMatch(ctx context.Context, pattern []string) (string, error)
	TopByUsage(ctx context.Context, limit int) ([]UsageEntry, error)
	PruneByAge(ctx context.Context, maxAge time.Duration) (int64, error)
	PruneByURLPattern(ctx context.Context, pattern string) (int64, error)
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
	log *log.Logger

	// Prepared statements
	upsertVisit *sql.Stmt
	byLastSeg   *sql.Stmt
	topByUsage  *sql.Stmt
	pruneByAge  *sql.Stmt
	pruneByLike *sql.Stmt
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithClock sets the time source used for frecency and age calculations.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) {
		s.now = now
	}
}

// WithLogger sets the store's logger.
func WithLogger(l *log.Logger) Option {
	return func(s *SQLiteStore) {
		s.log = l
	}
}

// NewSQLiteStore creates a SQLiteStore from an already-opened and migrated
// database.
func NewSQLiteStore(db *sql.DB, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		db:  db,
		now: time.Now,
		log: logger.New("store"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.upsertVisit, err = s.db.Prepare(`
		INSERT INTO urls (full_url, segments, last_segment, score, last_accessed)
		VALUES (?, ?, ?, 1.0, ?)
		ON CONFLICT(full_url) DO UPDATE SET
			score = score + 1.0,
			last_accessed = excluded.last_accessed
	`)
	if err != nil {
		return err
	}

	s.byLastSeg, err = s.db.Prepare(`
		SELECT full_url, segments, score, last_accessed
		FROM urls
		WHERE last_segment = ? COLLATE NOCASE
	`)
	if err != nil {
		return err
	}

	s.topByUsage, err = s.db.Prepare(`
		SELECT full_url, score, last_accessed
		FROM urls
		ORDER BY score DESC
		LIMIT ?
	`)
	if err != nil {
		return err
	}

	s.pruneByAge, err = s.db.Prepare(`DELETE FROM urls WHERE last_accessed < ?`)
	if err != nil {
		return err
	}

	s.pruneByLike, err = s.db.Prepare(`DELETE FROM urls WHERE full_url LIKE ?`)
	if err != nil {
		return err
	}

	return nil
}

// AddVisit records a visit to url at visitedAt: a new record starts with
// score 1.0, a repeat visit increments the score and overwrites
// last_accessed. Returns an error wrapping ErrMalformedURL if the URL cannot
// be parsed into segments.
func (s *SQLiteStore) AddVisit(ctx context.Context, url string, visitedAt time.Time) error {
	segments, err := ExtractSegments(url)
	if err != nil {
		return err
	}
	segmentsJSON, err := json.Marshal(segments)
	if err != nil {
		return fmt.Errorf("encode segments: %w", err)
	}

	s.log.Info("recording visit", "url", url)

	_, err = s.upsertVisit.ExecContext(ctx,
		url, string(segmentsJSON), lastSegment(segments), visitedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("record visit: %w", err)
	}

	return nil
}

// FuzzyMatch returns all stored URLs whose segments satisfy the pattern,
// sorted by frecency descending. An empty pattern yields an empty result.
func (s *SQLiteStore) FuzzyMatch(ctx context.Context, pattern []string) ([]Match, error) {
	if len(pattern) == 0 {
		return []Match{}, nil
	}

	last := pattern[len(pattern)-1]
	s.log.Debug("querying last-segment candidates", "segment", last)

	rows, err := s.byLastSeg.QueryContext(ctx, last)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	now := s.now()
	matches := []Match{}
	var candidates int

	for rows.Next() {
		var (
			url          string
			segmentsJSON string
			score        float64
			accessedSecs int64
		)
		if err := rows.Scan(&url, &segmentsJSON, &score, &accessedSecs); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates++

		var segments []string
		if err := json.Unmarshal([]byte(segmentsJSON), &segments); err != nil {
			return nil, fmt.Errorf("decode segments for %s: %w", url, err)
		}

		if !patternMatchesSegments(segments, pattern) {
			continue
		}

		accessed := time.Unix(accessedSecs, 0)
		frecency := calculateFrecency(score, accessed, now)
		s.log.Debug("matched", "url", url, "score", score, "frecency", frecency)
		matches = append(matches, Match{URL: url, Frecency: frecency, LastAccessed: accessed})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}

	s.log.Debug("candidate scan complete", "candidates", candidates, "matches", len(matches))

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Frecency > matches[j].Frecency
	})

	return matches, nil
}

// BestMatch returns the highest-frecency URL for the pattern, or an error
// wrapping ErrNoMatch when nothing in the history satisfies it.
func (s *SQLiteStore) BestMatch(ctx context.Context, pattern []string) (string, error) {
	matches, err := s.FuzzyMatch(ctx, pattern)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: pattern %v", ErrNoMatch, pattern)
	}
	return matches[0].URL, nil
}

// TopByUsage returns up to limit records with the highest raw score.
func (s *SQLiteStore) TopByUsage(ctx context.Context, limit int) ([]UsageEntry, error) {
	rows, err := s.topByUsage.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query top URLs: %w", err)
	}
	defer rows.Close()

	entries := []UsageEntry{}
	for rows.Next() {
		var (
			url          string
			score        float64
			accessedSecs int64
		)
		if err := rows.Scan(&url, &score, &accessedSecs); err != nil {
			return nil, fmt.Errorf("scan top URL: %w", err)
		}
		entries = append(entries, UsageEntry{
			URL:          url,
			Score:        score,
			LastAccessed: time.Unix(accessedSecs, 0),
		})
	}

	return entries, rows.Err()
}

// PruneByAge deletes records whose last visit is older than maxAge and
// returns the number removed.
func (s *SQLiteStore) PruneByAge(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := s.now().Add(-maxAge).Unix()

	res, err := s.pruneByAge.ExecContext(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune by age: %w", err)
	}

	return res.RowsAffected()
}

// PruneByURLPattern deletes records whose URL matches an anchor-aware
// substring pattern (^ prefix, $ suffix, both for exact, neither for
// contains) and returns the number removed.
func (s *SQLiteStore) PruneByURLPattern(ctx context.Context, pattern string) (int64, error) {
	res, err := s.pruneByLike.ExecContext(ctx, patternToLike(pattern))
	if err != nil {
		return 0, fmt.Errorf("prune by pattern: %w", err)
	}

	return res.RowsAffected()
}

// patternToLike translates the anchor-aware pattern syntax into a SQL LIKE
// pattern. Literal-escaped dots are unescaped first.
func patternToLike(pattern string) string {
	unescaped := strings.ReplaceAll(pattern, `\.`, ".")

	hasPrefix := strings.HasPrefix(unescaped, "^")
	hasSuffix := strings.HasSuffix(unescaped, "$")
	trimmed := strings.TrimSuffix(strings.TrimPrefix(unescaped, "^"), "$")

	switch {
	case hasPrefix && hasSuffix:
		return trimmed
	case hasPrefix:
		return trimmed + "%"
	case hasSuffix:
		return "%" + trimmed
	default:
		return "%" + trimmed + "%"
	}
}

// Stats returns aggregate statistics about the history database.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(score), 0) FROM urls",
	).Scan(&stats.TotalURLs, &stats.TotalVisits)
	if err != nil {
		return nil, fmt.Errorf("count urls: %w", err)
	}

	if stats.TotalURLs > 0 {
		var oldest, newest int64
		err = s.db.QueryRowContext(ctx,
			"SELECT MIN(last_accessed), MAX(last_accessed) FROM urls",
		).Scan(&oldest, &newest)
		if err != nil {
			return nil, fmt.Errorf("visit time range: %w", err)
		}
		stats.OldestVisit = time.Unix(oldest, 0)
		stats.NewestVisit = time.Unix(newest, 0)
	}

	return stats, nil
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{
		s.upsertVisit, s.byLastSeg, s.topByUsage,
		s.pruneByAge, s.pruneByLike,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
