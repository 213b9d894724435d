// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session coordinates the pet's triggers.
//
// The Manager is the single entry point for everything the user can do:
// the global hotkey, tray menu clicks, chat submissions and the chat window
// toggle. It owns no state of its own beyond session bookkeeping; mode and
// size live in a state.Register, the conversation in a transcript.Store,
// and windows behind the WindowManager interface.
//
// # Key Types
//
//   - Manager: trigger coordinator
//   - Settings: the reloadable subset of the configuration
//   - WindowManager, Window: host windowing seam
//
// # Usage
//
//	mgr, err := session.NewManager(session.Options{
//	    Register:   reg,
//	    Transcript: transcript.NewStore(),
//	    Client:     ollama.NewClient(),
//	    Windows:    ui,
//	    Quit:       cancel,
//	    Settings:   session.SettingsFrom(cfg),
//	})
//
//	reply := mgr.SubmitChat(ctx, "안녕!")
//	mgr.HandleMenu("size_300")
//	mgr.HandleHotkey()
package session
