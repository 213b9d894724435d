// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli is the cody command tree.
//
// Running cody with no arguments starts the desktop pet in the terminal.
// The other commands are for scripting and troubleshooting:
//
//	cody              start the pet (same as "cody run")
//	cody chat         talk to 코디 in a line-based REPL
//	cody status       Ollama health, installed models, saved settings
//	cody config show  print the effective configuration
//	cody config path  print the config file location
//	cody config init  write a default config file
//	cody version      print build information
//
// Every command loads the configuration the same way (file, then CODY_*
// environment variables, then the global flags) through newApp or
// loadConfig.
package cli
