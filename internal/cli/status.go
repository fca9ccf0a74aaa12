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

// statusTopCount is how many top URLs the status summary includes.
const statusTopCount = 5

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
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

// executeWithStore prints history statistics from a provided store (used by
// tests).
func (c *StatusCommand) executeWithStore(store storage.Store) error {
	ctx := context.Background()

	stats, err := store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("reading statistics: %w", err)
	}

	top, err := store.TopByUsage(ctx, statusTopCount)
	if err != nil {
		return fmt.Errorf("listing top URLs: %w", err)
	}

	if c.globals.JSON {
		return c.printJSON(stats, top)
	}
	return c.printHuman(stats, top)
}

func (c *StatusCommand) printHuman(stats *storage.Stats, top []storage.UsageEntry) error {
	fmt.Printf("otot %s\n\n", c.version)
	fmt.Printf("URLs tracked:  %d\n", stats.TotalURLs)
	fmt.Printf("Total visits:  %.0f\n", stats.TotalVisits)

	if stats.TotalURLs > 0 {
		fmt.Printf("Oldest visit:  %s\n", stats.OldestVisit.Local().Format("2006-01-02 15:04"))
		fmt.Printf("Newest visit:  %s\n", stats.NewestVisit.Local().Format("2006-01-02 15:04"))
	}

	if len(top) > 0 {
		fmt.Println()
		fmt.Println("Most visited:")
		for _, e := range top {
			fmt.Printf("  %4.0f  %s\n", e.Score, e.URL)
		}
	}

	return nil
}

func (c *StatusCommand) printJSON(stats *storage.Stats, top []storage.UsageEntry) error {
	out := map[string]interface{}{
		"version":      c.version,
		"total_urls":   stats.TotalURLs,
		"total_visits": stats.TotalVisits,
	}
	if stats.TotalURLs > 0 {
		out["oldest_visit"] = stats.OldestVisit.UTC().Format(time.RFC3339)
		out["newest_visit"] = stats.NewestVisit.UTC().Format(time.RFC3339)
	}

	topOut := make([]jsonUsageEntry, len(top))
	for i, e := range top {
		topOut[i] = jsonUsageEntry{
			URL:          e.URL,
			Score:        e.Score,
			LastAccessed: e.LastAccessed.UTC().Format(time.RFC3339),
		}
	}
	out["most_visited"] = topOut

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
