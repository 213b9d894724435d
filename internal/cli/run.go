// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/cody/internal/hotkey"
	"github.com/jeranaias/cody/internal/ui/pet"
)

// runPet starts the full-screen pet and blocks until the user quits.
func runPet(cmd *cobra.Command, flags *globalFlags) error {
	if err := RequiresTTY("start the pet"); err != nil {
		return fmt.Errorf("%w (try 'cody chat' for piped input)", err)
	}

	app, err := newApp(cmd.Context(), flags.options())
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.WatchConfig(); err != nil {
		app.Logger.Warn("config hot reload disabled", zap.Error(err))
	}

	if err := app.Client.CheckRunning(cmd.Context()); err != nil {
		app.Logger.Warn("ollama not reachable at startup",
			zap.String("endpoint", app.Client.Endpoint()), zap.Error(err))
	}

	events := pet.Listen(app.Bus)
	defer events.Close()

	acc, err := hotkey.Parse(app.Config.Pet.Hotkey)
	if err != nil {
		// unreachable after Validate
		acc, _ = hotkey.Parse(hotkey.DefaultAccelerator)
	}

	opts := pet.Options{
		Controller:    app.Manager,
		Host:          app.Host,
		Events:        events,
		Hotkey:        acc,
		MarkdownStyle: markdownStyle(),
		OnMove:        app.SavePosition,
		Logger:        app.Logger,
	}
	if pos := app.Restored.Position; pos != nil {
		opts.X, opts.Y = pos.X, pos.Y
	}

	program := tea.NewProgram(pet.New(opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(app.Context()),
	)
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && app.Context().Err() != nil {
		// quit from the menu or a signal
		err = nil
	}

	info := app.Manager.Info()
	app.Logger.Info("cody stopped",
		zap.Int("messages", info.Messages),
		zap.Duration("uptime", info.LastActivity.Sub(info.StartTime)),
		zap.Duration("idle", info.Idle))
	return err
}
