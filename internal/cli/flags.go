package cli

import (
	"time"

	"github.com/idiomattic/otot/internal/browser"
	"github.com/idiomattic/otot/internal/config"
	"github.com/idiomattic/otot/internal/storage"
)

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	DBPath  string `long:"db-path" description:"Path to history database" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// OpenCommand — resolve an address and open it in a browser.
type OpenCommand struct {
	Browser  string `long:"browser" description:"Browser to open with (overrides configured preference)"`
	NoLaunch bool   `long:"no-launch" description:"Resolve and record without opening a browser"`

	Args struct {
		Address string `positional-arg-name:"ADDRESS" description:"Full URL or fuzzy pattern"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string

	// injectable for testing; nil means use the real implementations
	store  storage.Store
	opener browser.Opener
	prefs  *config.Config
	now    func() time.Time
}

// TopCommand — list the most-visited URLs.
type TopCommand struct {
	Limit int `long:"limit" description:"Maximum results" default:"10"`

	globals *GlobalFlags
	version string
	store   storage.Store
}

// PruneCommand — remove history records by age and/or URL pattern.
type PruneCommand struct {
	OlderThan  string `long:"older-than" description:"Remove records not visited within this duration (e.g., 30d, 12h)"`
	URLPattern string `long:"url-pattern" description:"Remove records whose URL matches an anchor-aware pattern (^prefix, suffix$)"`

	globals *GlobalFlags
	version string
	store   storage.Store
}

// StatusCommand — show history statistics.
type StatusCommand struct {
	globals *GlobalFlags
	version string
	store   storage.Store
}

// ConfigCommand — read or write user preferences.
type ConfigCommand struct {
	Args struct {
		Action string   `positional-arg-name:"ACTION" description:"One of: get, set, path"`
		Rest   []string `positional-arg-name:"ARGS"`
	} `positional-args:"yes"`

	globals    *GlobalFlags
	version    string
	configPath string // injectable for testing; "" means default path
}
