// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for cody.
//
// Supports both TOML and JSON configuration formats, with built-in defaults,
// environment variable overrides, validation, and a file watcher for
// picking up edits while the pet is running.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - OllamaConfig: Endpoint, model and timeouts for the inference server
//   - ChatConfig: History window, persona prompt and throttling
//   - PetConfig: Startup size, mode and hotkey
//   - Watcher: Reloads the config file when it changes on disk
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (CODY_*)
//   - ~/.cody/config.toml
//   - ~/.cody/config.json
//   - Built-in defaults
//
// CODY_HOME moves the whole ~/.cody directory.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Printf("config: %v (using defaults)", err)
//	}
//
//	w, err := config.Watch(path, logger, func(cfg *config.Config) {
//	    mgr.Reconfigure(cfg)
//	})
package config
