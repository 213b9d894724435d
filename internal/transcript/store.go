// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript keeps the in-memory chat log and builds the bounded
// prompt window sent with every inference call.
package transcript

import "sync"

// Role is who authored a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat entry. It is a value type; copies are independent.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Store is an ordered, lock-guarded chat log. Storage is unbounded unless a
// cap is set with NewStoreWithCap; only the prompt window is always bounded.
type Store struct {
	mu       sync.Mutex
	messages []Message
	maxKept  int
}

// NewStore returns an empty store with unbounded storage.
func NewStore() *Store {
	return &Store{}
}

// NewStoreWithCap returns a store that keeps at most maxKept messages,
// dropping the oldest first. maxKept <= 0 means unbounded.
func NewStoreWithCap(maxKept int) *Store {
	return &Store{maxKept: maxKept}
}

// Append adds a message at the end of the log.
func (s *Store) Append(role Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, Message{Role: role, Content: content})
	if s.maxKept > 0 && len(s.messages) > s.maxKept {
		drop := len(s.messages) - s.maxKept
		// Shift in place so the backing array does not grow forever.
		n := copy(s.messages, s.messages[drop:])
		clear(s.messages[n:])
		s.messages = s.messages[:n]
	}
}

// Window returns a fresh slice holding one system message with preamble,
// followed by the last max stored messages (fewer if the log is shorter).
// The store is not modified.
func (s *Store) Window(max int, preamble string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := 0
	if max <= 0 {
		start = len(s.messages)
	} else if len(s.messages) > max {
		start = len(s.messages) - max
	}

	out := make([]Message, 0, 1+len(s.messages)-start)
	out = append(out, Message{Role: RoleSystem, Content: preamble})
	out = append(out, s.messages[start:]...)
	return out
}

// Messages returns a copy of the whole log.
func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of stored messages.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Clear empties the log.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}
