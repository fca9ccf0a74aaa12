package cli

import (
	"fmt"
	"os"
	"strings"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Open   *OpenCommand
	Top    *TopCommand
	Prune  *PruneCommand
	Status *StatusCommand
	Config *ConfigCommand
}

// commandNames are the registered subcommand names, used to decide when a
// bare address should be rewritten to "open ADDRESS".
var commandNames = map[string]bool{
	"open":   true,
	"top":    true,
	"prune":  true,
	"status": true,
	"config": true,
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "otot"
	parser.LongDescription = "Address launcher: open full URLs directly, or resolve abbreviated patterns against your visit history."

	cmds := &commands{
		Open:   &OpenCommand{globals: &globals, version: version},
		Top:    &TopCommand{globals: &globals, version: version},
		Prune:  &PruneCommand{globals: &globals, version: version},
		Status: &StatusCommand{globals: &globals, version: version},
		Config: &ConfigCommand{globals: &globals, version: version},
	}

	parser.AddCommand("open", "Open an address", "Open a full URL directly, or resolve a fuzzy pattern against the visit history and open the best match.", cmds.Open)
	parser.AddCommand("top", "List most-visited URLs", "List the URLs with the highest visit scores.", cmds.Top)
	parser.AddCommand("prune", "Remove history records", "Remove history records older than a duration and/or matching a URL pattern.", cmds.Prune)
	parser.AddCommand("status", "Show history statistics", "Show record counts, visit totals, and the visit time range.", cmds.Status)
	parser.AddCommand("config", "Read or write preferences", "Get, set, or locate the user preference file (e.g., preferred_browser).", cmds.Config)

	return parser, &globals, cmds
}

// Run is the main entry point for the otot CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the
// matched subcommand. A bare address is sugar for the open subcommand, so
// "otot github/rust/issues" works.
func RunWithArgs(version string, args []string) error {
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}

	// Handle --version before parsing (go-flags requires a subcommand, but
	// --version is valid without one).
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("otot %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	checkArgs = rewriteBareAddress(checkArgs)

	parser, _, _ := buildParser(version)

	_, err := parser.ParseArgs(checkArgs)
	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}

// rewriteBareAddress inserts "open" when the first token is a bare address
// rather than a subcommand, so "otot github/rust/issues" works. Invocations
// that lead with flags are left for go-flags to sort out.
func rewriteBareAddress(args []string) []string {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") || commandNames[args[0]] {
		return args
	}
	return append([]string{"open"}, args...)
}
