// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jeranaias/cody/internal/config"
	"github.com/jeranaias/cody/internal/ollama"
	"github.com/jeranaias/cody/internal/storage"
)

// =============================================================================
// STATUS DATA
// =============================================================================

// StatusData is what "cody status" reports, also its JSON shape.
type StatusData struct {
	Endpoint       string          `json:"endpoint"`
	Running        bool            `json:"running"`
	Error          string          `json:"error,omitempty"`
	Model          string          `json:"model"`
	ModelInstalled bool            `json:"model_installed"`
	Models         []StatusModel   `json:"models"`
	Storage        string          `json:"storage"`
	Settings       *StatusSettings `json:"settings,omitempty"`
}

// StatusModel is one installed Ollama model.
type StatusModel struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// StatusSettings are the persisted pet settings.
type StatusSettings struct {
	Size     int               `json:"size,omitempty"`
	Mode     string            `json:"mode,omitempty"`
	Position *storage.Position `json:"window_position,omitempty"`
}

// =============================================================================
// COMMAND
// =============================================================================

func newStatusCommand(flags *globalFlags) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"s"},
		Short:   "Show Ollama health, installed models and saved settings",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.options(), func(err error) {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", warningStyle.Render("warning:"), err)
			})
			if err != nil {
				return err
			}
			data := collectStatus(cmd.Context(), cfg)
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(data)
			}
			printStatus(cmd.OutOrStdout(), data)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	return cmd
}

// collectStatus probes Ollama and reads the settings store. Failures are
// recorded in the result rather than returned.
func collectStatus(ctx context.Context, cfg *config.Config) StatusData {
	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:       cfg.Ollama.Endpoint,
		Model:         cfg.Ollama.Model,
		HealthTimeout: cfg.Ollama.HealthTimeout.Duration,
	})
	data := StatusData{
		Endpoint: client.Endpoint(),
		Model:    client.Model(),
		Models:   []StatusModel{},
	}

	// a successful model listing is the health check
	models, err := client.ListModels(ctx)
	if err != nil {
		data.Error = err.Error()
	} else {
		data.Running = true
	}
	for _, m := range models {
		data.Models = append(data.Models, StatusModel{Name: m.Name, Size: m.Size, ModifiedAt: m.ModifiedAt})
		if modelMatches(m.Name, data.Model) {
			data.ModelInstalled = true
		}
	}

	data.Storage, data.Settings = readSettings(ctx, cfg)
	return data
}

// modelMatches reports whether an installed model name satisfies the
// configured one; "llama3.2" matches "llama3.2:latest".
func modelMatches(installed, configured string) bool {
	if installed == configured {
		return true
	}
	return !strings.Contains(configured, ":") && installed == configured+":latest"
}

func readSettings(ctx context.Context, cfg *config.Config) (string, *StatusSettings) {
	if cfg.Storage.Disabled {
		return "disabled", nil
	}
	path, err := cfg.StoragePath()
	if err != nil {
		return "unavailable: " + err.Error(), nil
	}
	store, err := storage.Open(path)
	if err != nil {
		return "unavailable: " + err.Error(), nil
	}
	defer store.Close()

	s, err := store.Load(ctx)
	if err != nil {
		return path + " (unreadable: " + err.Error() + ")", nil
	}
	out := &StatusSettings{Position: s.Position}
	if s.HasSize {
		out.Size = s.Size
	}
	if s.HasMode {
		out.Mode = s.Mode.String()
	}
	return path, out
}

// =============================================================================
// TEXT OUTPUT
// =============================================================================

func printStatus(w io.Writer, d StatusData) {
	fmt.Fprintln(w, titleStyle.Render("cody status"))

	fmt.Fprintln(w, sectionStyle.Render("Ollama"))
	fmt.Fprintln(w, field("Endpoint:", valueStyle.Render(d.Endpoint)))
	switch {
	case d.Running:
		fmt.Fprintln(w, field("Status:", successStyle.Render("running")))
	default:
		fmt.Fprintln(w, field("Status:", errorStyle.Render("not reachable")))
		if d.Error != "" {
			fmt.Fprintln(w, field("", dimStyle.Render(d.Error)))
		}
	}

	model := valueStyle.Render(d.Model)
	switch {
	case d.ModelInstalled:
		model += " " + successStyle.Render("(installed)")
	case d.Running:
		model += " " + warningStyle.Render("(not pulled; run: ollama pull "+d.Model+")")
	}
	fmt.Fprintln(w, field("Model:", model))

	if len(d.Models) > 0 {
		fmt.Fprintln(w, field("Installed:", fmt.Sprintf("%d models", len(d.Models))))
		for _, m := range d.Models {
			line := fmt.Sprintf("%-28s %8s", m.Name, humanize.Bytes(uint64(max(m.Size, 0))))
			if !m.ModifiedAt.IsZero() {
				line += "  " + dimStyle.Render(humanize.Time(m.ModifiedAt))
			}
			fmt.Fprintln(w, field("", line))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, sectionStyle.Render("Pet"))
	fmt.Fprintln(w, field("Storage:", valueStyle.Render(d.Storage)))
	if d.Settings == nil {
		return
	}
	fmt.Fprintln(w, field("Size:", orDefault(d.Settings.Size > 0, fmt.Sprintf("%dpx", d.Settings.Size))))
	fmt.Fprintln(w, field("Mode:", orDefault(d.Settings.Mode != "", d.Settings.Mode)))
	pos := ""
	if d.Settings.Position != nil {
		pos = fmt.Sprintf("%d, %d", d.Settings.Position.X, d.Settings.Position.Y)
	}
	fmt.Fprintln(w, field("Position:", orDefault(pos != "", pos)))
}

func orDefault(saved bool, value string) string {
	if !saved {
		return dimStyle.Render("not saved")
	}
	return valueStyle.Render(value)
}
