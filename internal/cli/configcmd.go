package cli

import (
	"fmt"

	"github.com/idiomattic/otot/internal/config"
)

// Execute implements the go-flags Commander interface for ConfigCommand.
func (c *ConfigCommand) Execute(args []string) error {
	if c.Args.Action == "" {
		return fmt.Errorf("config requires an action: get, set, or path")
	}

	path := c.configPath
	if path == "" {
		var err error
		path, err = config.Path()
		if err != nil {
			return err
		}
	}

	switch c.Args.Action {
	case "path":
		fmt.Println(path)
		return nil

	case "get":
		if len(c.Args.Rest) != 1 {
			return fmt.Errorf("usage: config get KEY")
		}
		cfg, err := config.LoadOrCreateAt(path)
		if err != nil {
			return err
		}
		value, err := configValue(cfg, c.Args.Rest[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil

	case "set":
		if len(c.Args.Rest) != 2 {
			return fmt.Errorf("usage: config set KEY VALUE")
		}
		cfg, err := config.LoadOrCreateAt(path)
		if err != nil {
			return err
		}
		if err := setConfigValue(cfg, c.Args.Rest[0], c.Args.Rest[1]); err != nil {
			return err
		}
		return config.SaveAt(path, cfg)

	default:
		return fmt.Errorf("unknown config action %q (use get, set, or path)", c.Args.Action)
	}
}

func configValue(cfg *config.Config, key string) (string, error) {
	switch key {
	case "preferred_browser":
		return cfg.PreferredBrowser, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "preferred_browser":
		cfg.PreferredBrowser = value
		return nil
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
}
