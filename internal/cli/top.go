package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/idiomattic/otot/internal/logger"
	"github.com/idiomattic/otot/internal/storage"
)

// Execute implements the go-flags Commander interface for TopCommand.
func (c *TopCommand) Execute(args []string) error {
	logger.SetVerbose(c.globals.Verbose)

	if c.store == nil {
		store, db, err := openStore(c.globals)
		if err != nil {
			return err
		}
		defer db.Close()
		defer store.Close()
		c.store = store
	}

	return c.executeWithStore(c.store)
}

// executeWithStore lists the top URLs against a provided store (used by
// tests).
func (c *TopCommand) executeWithStore(store storage.Store) error {
	ctx := context.Background()

	entries, err := store.TopByUsage(ctx, c.Limit)
	if err != nil {
		return fmt.Errorf("listing top URLs: %w", err)
	}

	if c.globals.JSON {
		return c.printJSON(entries)
	}
	return c.printHuman(entries)
}

func (c *TopCommand) printHuman(entries []storage.UsageEntry) error {
	if len(entries) == 0 {
		fmt.Println("No visits recorded yet.")
		return nil
	}

	for i, e := range entries {
		fmt.Printf("%d. %s\n", i+1, e.URL)
		fmt.Printf("   %.0f visit(s), last %s\n",
			e.Score, e.LastAccessed.Local().Format("2006-01-02 15:04"))
	}

	return nil
}

type jsonUsageEntry struct {
	URL          string  `json:"url"`
	Score        float64 `json:"score"`
	LastAccessed string  `json:"last_accessed"`
}

func (c *TopCommand) printJSON(entries []storage.UsageEntry) error {
	out := make([]jsonUsageEntry, len(entries))
	for i, e := range entries {
		out[i] = jsonUsageEntry{
			URL:          e.URL,
			Score:        e.Score,
			LastAccessed: e.LastAccessed.UTC().Format(time.RFC3339),
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
