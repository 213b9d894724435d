// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	endpoint   string
	model      string
	logLevel   string
	verbose    bool
}

// options turns the flags into app options.
func (f *globalFlags) options() appOptions {
	opts := appOptions{
		ConfigPath: f.configPath,
		Endpoint:   f.endpoint,
		Model:      f.model,
		LogLevel:   f.logLevel,
	}
	if f.verbose && opts.LogLevel == "" {
		opts.LogLevel = "debug"
	}
	return opts
}

// NewRootCommand builds the full command tree.
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "cody",
		Short: "코디 - a desktop pet that chats through your local Ollama",
		Long: `cody puts 코디, a small pet character, in your terminal. Click it to chat,
drag it around, or switch modes so it stays out of your way:

  interactive   clicks and drags reach the pet
  passthrough   the pet ignores clicks but still notices the pointer
  ghost         the pet ignores the pointer completely

Replies come from a local Ollama server; nothing leaves your machine.

Run without arguments to start the pet.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPet(cmd, flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "config file (default ~/.cody/config.toml)")
	pf.StringVar(&flags.endpoint, "endpoint", "", "Ollama endpoint, e.g. http://localhost:11434")
	pf.StringVarP(&flags.model, "model", "m", "", "Ollama model name")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "shorthand for --log-level debug")

	root.AddCommand(
		newRunCommand(flags),
		newChatCommand(flags),
		newStatusCommand(flags),
		newConfigCommand(flags),
		newVersionCommand(),
	)
	return root
}

func newRunCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the pet (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPet(cmd, flags)
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), versionString())
		},
	}
}

func versionString() string {
	return fmt.Sprintf("cody %s\n  commit: %s\n  built:  %s\n  go:     %s %s/%s\n",
		Version, GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Execute runs the command tree against os.Args and returns the process
// exit code. SIGINT and SIGTERM cancel the command's context.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		DisplayError(err)
		return ExitCode(err)
	}
	return ExitSuccess
}
