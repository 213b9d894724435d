// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for the local Ollama server.
package ollama

import (
	"time"

	"github.com/jeranaias/cody/internal/transcript"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Message is a chat message on the wire.
type Message struct {
	Role    string `json:"role"`    // "system", "user", "assistant"
	Content string `json:"content"` // The message content
}

// ChatRequest is the request body for the /api/chat endpoint.
type ChatRequest struct {
	Model    string    `json:"model"`    // Model name (e.g., "llama3.2")
	Messages []Message `json:"messages"` // System preamble plus recent history
	Stream   bool      `json:"stream"`   // Always false; one complete reply is expected
}

// FromTranscript converts a prompt window into wire messages.
func FromTranscript(window []transcript.Message) []Message {
	out := make([]Message, len(window))
	for i, m := range window {
		out[i] = Message{Role: string(m.Role), Content: m.Content}
	}
	return out
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ChatResponse is the response from the /api/chat endpoint. Message is a
// pointer so a body without a message field can be told apart from one
// with empty content. The remaining fields are informational and decoded
// best-effort; a malformed value leaves them zero.
type ChatResponse struct {
	Model         string   `json:"model,omitempty"`
	CreatedAt     string   `json:"created_at,omitempty"`
	Message       *Message `json:"message,omitempty"`
	Done          bool     `json:"done,omitempty"`
	DoneReason    string   `json:"done_reason,omitempty"`
	TotalDuration int64    `json:"total_duration,omitempty"` // nanoseconds
	EvalCount     int      `json:"eval_count,omitempty"`     // number of tokens generated
	EvalDuration  int64    `json:"eval_duration,omitempty"`  // nanoseconds
}

// replyBody is the part of a chat response that decides the outcome.
// Content is a pointer so a missing or null value is rejected.
type replyBody struct {
	Message *struct {
		Role    string  `json:"role"`
		Content *string `json:"content"`
	} `json:"message"`
}

// TotalTime returns the total generation time reported by the server.
func (r *ChatResponse) TotalTime() time.Duration {
	return time.Duration(r.TotalDuration)
}

// TokensPerSecond calculates the generation speed from a response.
func (r *ChatResponse) TokensPerSecond() float64 {
	if r.EvalDuration == 0 {
		return 0
	}
	return float64(r.EvalCount) / (float64(r.EvalDuration) / 1e9)
}

// ModelInfo contains information about an installed model.
type ModelInfo struct {
	Name       string    `json:"name"`
	ModifiedAt time.Time `json:"modified_at"`
	Size       int64     `json:"size"`
	Digest     string    `json:"digest"`
}

// ListModelsResponse is the response from the /api/tags endpoint.
type ListModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// =============================================================================
// REPLY ENVELOPE
// =============================================================================

// Reply is the outcome of one chat turn as seen by the front end. Exactly
// one of Response or Error is meaningful: Response when Success is true,
// Error otherwise. A successful reply with empty content omits Response.
type Reply struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Succeeded wraps assistant content in a successful Reply.
func Succeeded(content string) Reply {
	return Reply{Success: true, Response: content}
}

// Failed wraps an error in a failed Reply. The error text is used verbatim.
func Failed(err error) Reply {
	return Reply{Success: false, Error: err.Error()}
}
