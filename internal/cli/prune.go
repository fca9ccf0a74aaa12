package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/idiomattic/otot/internal/logger"
)

// Execute implements the go-flags Commander interface for PruneCommand.
func (c *PruneCommand) Execute(args []string) error {
	logger.SetVerbose(c.globals.Verbose)

	if c.OlderThan == "" && c.URLPattern == "" {
		return fmt.Errorf("prune requires --older-than and/or --url-pattern")
	}

	if c.store == nil {
		store, db, err := openStore(c.globals)
		if err != nil {
			return err
		}
		defer db.Close()
		defer store.Close()
		c.store = store
	}

	return c.executeWithStore()
}

// executeWithStore runs the prune against the configured store (used by
// tests).
func (c *PruneCommand) executeWithStore() error {
	ctx := context.Background()

	var byAge, byPattern int64

	if c.OlderThan != "" {
		maxAge, err := parseDuration(c.OlderThan)
		if err != nil {
			return fmt.Errorf("invalid --older-than value: %w", err)
		}

		byAge, err = c.store.PruneByAge(ctx, maxAge)
		if err != nil {
			return fmt.Errorf("pruning by age: %w", err)
		}
	}

	if c.URLPattern != "" {
		var err error
		byPattern, err = c.store.PruneByURLPattern(ctx, c.URLPattern)
		if err != nil {
			return fmt.Errorf("pruning by pattern: %w", err)
		}
	}

	if c.globals.JSON {
		out := map[string]interface{}{
			"removed": byAge + byPattern,
		}
		if c.OlderThan != "" {
			out["removed_by_age"] = byAge
		}
		if c.URLPattern != "" {
			out["removed_by_pattern"] = byPattern
		}
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(out)
	}

	if c.OlderThan != "" {
		fmt.Printf("Removed %d record(s) older than %s\n", byAge, c.OlderThan)
	}
	if c.URLPattern != "" {
		fmt.Printf("Removed %d record(s) matching %q\n", byPattern, c.URLPattern)
	}

	return nil
}
