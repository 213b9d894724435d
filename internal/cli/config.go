// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/cody/internal/config"
	"github.com/jeranaias/cody/internal/mode"
)

func newConfigCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and modify configuration",
		Long: `View and modify the configuration file.

Keys use their section names, e.g.:
  cody config set ollama.model qwen2.5:7b
  cody config set chat.history_window 6
  cody config set pet.default_mode ghost

A running pet picks up chat and model changes without restarting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, flags, false)
		},
	}

	var jsonOut bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, flags, jsonOut)
		},
	}
	show.Flags().BoolVar(&jsonOut, "json", false, "output in JSON format")

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := configFilePath(flags.options())
			if err != nil {
				return configError("path", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := configFilePath(flags.options())
			if err != nil {
				return configError("init", err)
			}
			if _, err := os.Stat(p); err == nil && !force {
				return &CommandError{
					Command: "config", Action: "init",
					Reason: p + " already exists (use --force to overwrite)",
					Code:   ExitConfigError,
				}
			}
			if err := save(config.Default(), p); err != nil {
				return configError("init", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", successStyle.Render("✓"), p)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return settableKeys(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := configFilePath(flags.options())
			if err != nil {
				return configError("set", err)
			}
			cfg, err := readConfigFile(p)
			if err != nil {
				return configError("set", err)
			}
			if err := setKey(cfg, args[0], args[1]); err != nil {
				return &CommandError{Command: "config", Action: "set", Reason: err.Error(), Code: ExitConfigError}
			}
			if err := cfg.Validate(); err != nil {
				return configError("set", err)
			}
			if err := save(cfg, p); err != nil {
				return configError("set", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", successStyle.Render("✓"), args[0], args[1])
			return nil
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Reset the config file to defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := configFilePath(flags.options())
			if err != nil {
				return configError("reset", err)
			}
			if err := save(config.Default(), p); err != nil {
				return configError("reset", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s reset %s\n", successStyle.Render("✓"), p)
			return nil
		},
	}

	cmd.AddCommand(show, path, initCmd, set, reset)
	return cmd
}

func showConfig(cmd *cobra.Command, flags *globalFlags, jsonOut bool) error {
	cfg, err := loadConfig(flags.options(), func(err error) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", warningStyle.Render("warning:"), err)
	})
	if err != nil {
		return err
	}
	if jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}
	fmt.Fprint(cmd.OutOrStdout(), cfg.String())
	return nil
}

// readConfigFile loads only what the file says, without environment
// overrides, so "config set" does not bake CODY_* values into the file.
func readConfigFile(path string) (*config.Config, error) {
	cfg := config.Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	var err error
	if strings.HasSuffix(path, ".json") {
		err = config.LoadJSON(cfg, path)
	} else {
		err = config.LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	return cfg, nil
}

func save(cfg *config.Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		return config.SaveJSON(cfg, path)
	}
	return config.SaveTOML(cfg, path)
}

// =============================================================================
// KEY SETTERS
// =============================================================================

type setter func(cfg *config.Config, value string) error

var setters = map[string]setter{
	"ollama.endpoint": func(c *config.Config, v string) error { c.Ollama.Endpoint = v; return nil },
	"ollama.model":    func(c *config.Config, v string) error { c.Ollama.Model = v; return nil },
	"ollama.request_timeout": func(c *config.Config, v string) error {
		return c.Ollama.RequestTimeout.UnmarshalText([]byte(v))
	},
	"ollama.health_timeout": func(c *config.Config, v string) error {
		return c.Ollama.HealthTimeout.UnmarshalText([]byte(v))
	},
	"chat.history_window": intSetter(func(c *config.Config) *int { return &c.Chat.HistoryWindow }),
	"chat.system_prompt":  func(c *config.Config, v string) error { c.Chat.SystemPrompt = v; return nil },
	"chat.max_stored":     intSetter(func(c *config.Config) *int { return &c.Chat.MaxStored }),
	"chat.max_per_minute": intSetter(func(c *config.Config) *int { return &c.Chat.MaxPerMinute }),
	"pet.default_size":    intSetter(func(c *config.Config) *int { return &c.Pet.DefaultSize }),
	"pet.default_mode": func(c *config.Config, v string) error {
		m, err := mode.Parse(v)
		if err != nil {
			return err
		}
		c.Pet.DefaultMode = m
		return nil
	},
	"pet.hotkey":        func(c *config.Config, v string) error { c.Pet.Hotkey = v; return nil },
	"pet.restore_state": boolSetter(func(c *config.Config) *bool { return &c.Pet.RestoreState }),
	"storage.path":      func(c *config.Config, v string) error { c.Storage.Path = v; return nil },
	"storage.disabled":  boolSetter(func(c *config.Config) *bool { return &c.Storage.Disabled }),
	"log.level":         func(c *config.Config, v string) error { c.Log.Level = v; return nil },
	"log.file":          func(c *config.Config, v string) error { c.Log.File = v; return nil },
}

func intSetter(field func(*config.Config) *int) setter {
	return func(c *config.Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%q is not a number", v)
		}
		*field(c) = n
		return nil
	}
}

func boolSetter(field func(*config.Config) *bool) setter {
	return func(c *config.Config, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%q is not true or false", v)
		}
		*field(c) = b
		return nil
	}
}

func setKey(cfg *config.Config, key, value string) error {
	set, ok := setters[strings.ToLower(key)]
	if !ok {
		return fmt.Errorf("unknown key %q (known: %s)", key, strings.Join(settableKeys(), ", "))
	}
	return set(cfg, value)
}

func settableKeys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
