// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for the local Ollama server that
// answers the pet's chat messages.
//
// Every chat call is a single non-streaming POST to /api/chat. The outcome
// is classified into one of five cases and folded into a Reply so callers
// never see a Go error from a chat turn:
//
//   - transport failure:  "Failed to connect to Ollama: <detail>"
//   - non-2xx status:     "Ollama returned status: <status>"
//   - undecodable body:   "Failed to parse response: <detail>"
//   - no message field:   "Empty response from Ollama"
//   - success:            Reply{Success: true, Response: <content>}
//
// # Key Types
//
//   - Client: thread-safe HTTP client
//   - Reply: the success/response/error envelope handed to the front end
//   - ClientError: typed error behind every failed Reply
//
// # Usage
//
//	client := ollama.NewClient()
//	reply := client.Send(ctx, store.Window(10, prompt))
//	if !reply.Success {
//	    log.Println(reply.Error)
//	}
//
// No retries are made; the client never mutates the transcript.
package ollama
