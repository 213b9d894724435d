// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the pet's settings between runs.
//
// Settings live in a small SQLite database (~/.cody/settings.db by default)
// as JSON values keyed by name. Only the character size, the interaction
// mode and the window position are kept; the chat transcript is never
// written to disk.
//
// # Key Types
//
//   - SettingsStore: key/value store backed by modernc.org/sqlite
//   - Settings: the typed view restored at startup
//
// # Usage
//
//	store, err := storage.Open(path)
//	settings, err := store.Load(ctx)
//
// Keep the store in sync with the state register. Writes happen on a
// background goroutine; detach flushes them, so call it before Close:
//
//	detach := storage.Persist(bus, store, logger)
//	defer detach()
package storage
