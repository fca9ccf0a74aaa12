package cli

import (
	"bytes"
	"database/sql"
	"io"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/idiomattic/otot/internal/storage"
)

// testNow is the fixed "current time" used by command tests.
var testNow = time.Unix(1_700_000_000, 0)

// openTestStore creates a migrated in-memory store with a fixed clock.
func openTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	runner := storage.NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	store, err := storage.NewSQLiteStore(db,
		storage.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

// fakeOpener records launch calls instead of opening a browser.
type fakeOpener struct {
	url     string
	browser string
	calls   int
	err     error
}

func (f *fakeOpener) Open(url, browser string) error {
	f.url = url
	f.browser = browser
	f.calls++
	return f.err
}

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}
