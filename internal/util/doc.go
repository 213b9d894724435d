// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across cody.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// Text Layout:
//   - StringWidth, TruncateWidth: cell-aware measuring for wide scripts
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - WrapWidth: word wrapping for the speech bubble
//
// # Usage
//
//	// Fit a Korean reply into a 24-cell bubble line
//	line := util.TruncateWidth(reply, 24)
//
//	// Write files atomically to prevent data loss
//	err := util.AtomicWriteFile(path, data, 0644)
package util
