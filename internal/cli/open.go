package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/idiomattic/otot/internal/browser"
	"github.com/idiomattic/otot/internal/classify"
	"github.com/idiomattic/otot/internal/config"
	"github.com/idiomattic/otot/internal/logger"
	"github.com/idiomattic/otot/internal/storage"
)

// Execute implements the go-flags Commander interface for OpenCommand.
func (c *OpenCommand) Execute(args []string) error {
	logger.SetVerbose(c.globals.Verbose)

	if c.Args.Address == "" {
		return fmt.Errorf("provided address must be a non-empty string")
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

	if c.opener == nil {
		c.opener = browser.NewSystemOpener()
	}

	if c.prefs == nil {
		prefs, err := config.LoadOrCreate()
		if err != nil {
			// Preferences are optional; a broken config file should not stop
			// the launch.
			logger.New("cli").Warn("could not load preferences", "err", err)
			prefs = config.DefaultConfig()
		}
		c.prefs = prefs
	}

	if c.now == nil {
		c.now = time.Now
	}

	return c.executeWithStore(c.store, c.opener, c.prefs)
}

// executeWithStore resolves and opens the address against a provided store
// and opener (used by tests).
func (c *OpenCommand) executeWithStore(store storage.Store, opener browser.Opener, prefs *config.Config) error {
	ctx := context.Background()
	address := c.Args.Address

	target, err := c.resolve(ctx, store, address)
	if err != nil {
		return err
	}

	if err := store.AddVisit(ctx, target, c.now()); err != nil {
		if !errors.Is(err, storage.ErrMalformedURL) {
			return fmt.Errorf("recording visit: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Warning: visit not recorded: %v\n", err)
	}

	browserName := c.Browser
	if browserName == "" {
		browserName = prefs.PreferredBrowser
	}

	if !c.NoLaunch {
		if err := opener.Open(target, browserName); err != nil {
			return fmt.Errorf("opening %s: %w", target, err)
		}
	}

	if c.globals.JSON {
		out := map[string]interface{}{
			"address":  address,
			"url":      target,
			"launched": !c.NoLaunch,
		}
		if browserName != "" {
			out["browser"] = browserName
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Println(target)
	return nil
}

// resolve turns the raw address into a concrete URL: either the address
// itself (canonicalized) or the best history match for its fuzzy pattern.
func (c *OpenCommand) resolve(ctx context.Context, store storage.Store, address string) (string, error) {
	in := classify.ClassifyInput(address)

	switch in.Type {
	case classify.FullURL:
		return in.URL.String(), nil
	default:
		if len(in.Pattern) == 0 {
			return "", fmt.Errorf("address %q contains no pattern segments", address)
		}
		target, err := store.BestMatch(ctx, in.Pattern)
		if errors.Is(err, storage.ErrNoMatch) {
			return "", fmt.Errorf("no history match for %q", address)
		}
		if err != nil {
			return "", fmt.Errorf("matching %q: %w", address, err)
		}
		return target, nil
	}
}
