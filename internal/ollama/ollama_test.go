// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for the local Ollama server.
package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/cody/internal/transcript"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithConfig(&ClientConfig{BaseURL: srv.URL}), srv
}

func window() []transcript.Message {
	return []transcript.Message{
		{Role: transcript.RoleSystem, Content: "be cute"},
		{Role: transcript.RoleUser, Content: "hi"},
	}
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:11434", cfg.BaseURL)
	assert.Equal(t, "llama3.2", cfg.Model)
	assert.Equal(t, 5*time.Second, cfg.HealthTimeout)
	assert.Zero(t, cfg.RequestTimeout)
}

func TestNewClientWithConfig_FillsDefaults(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{BaseURL: "http://127.0.0.1:9999/"})
	assert.Equal(t, "http://127.0.0.1:9999", c.Endpoint())
	assert.Equal(t, DefaultModel, c.Model())

	c = NewClientWithConfig(nil)
	assert.Equal(t, DefaultBaseURL, c.Endpoint())
}

func TestSetModel(t *testing.T) {
	c := NewClient()
	c.SetModel("qwen2.5:7b")
	assert.Equal(t, "qwen2.5:7b", c.Model())
	c.SetModel("")
	assert.Equal(t, "qwen2.5:7b", c.Model(), "empty model is ignored")
}

// =============================================================================
// REQUEST SHAPE
// =============================================================================

func TestSend_RequestShape(t *testing.T) {
	var got map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		io.WriteString(w, `{"message":{"role":"assistant","content":"hey"}}`)
	})

	reply := c.Send(context.Background(), window())
	require.True(t, reply.Success)

	assert.Equal(t, "llama3.2", got["model"])
	assert.Equal(t, false, got["stream"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	first := msgs[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "be cute", first["content"])
}

// =============================================================================
// OUTCOME CLASSIFICATION
// =============================================================================

func TestSend_Success(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"model":"llama3.2","message":{"role":"assistant","content":"헤헤 안녕!"},"done":true}`)
	})

	reply := c.Send(context.Background(), window())
	assert.Equal(t, Reply{Success: true, Response: "헤헤 안녕!"}, reply)
}

func TestSend_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close() // nothing listens here any more

	c := NewClientWithConfig(&ClientConfig{BaseURL: url})
	reply := c.Send(context.Background(), window())

	assert.False(t, reply.Success)
	assert.Empty(t, reply.Response)
	assert.True(t, strings.HasPrefix(reply.Error, "Failed to connect to Ollama: "), reply.Error)
}

func TestSend_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, RequestTimeout: 50 * time.Millisecond})
	reply := c.Send(context.Background(), window())

	assert.False(t, reply.Success)
	assert.Contains(t, reply.Error, "Failed to connect")
}

func TestSend_StatusFailure(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{http.StatusInternalServerError, "Ollama returned status: 500 Internal Server Error"},
		{http.StatusNotFound, "Ollama returned status: 404 Not Found"},
		{http.StatusServiceUnavailable, "Ollama returned status: 503 Service Unavailable"},
	}

	for _, tc := range tests {
		t.Run(http.StatusText(tc.code), func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.code)
				io.WriteString(w, `{"error":"model \"llama3.2\" not found"}`)
			})

			reply := c.Send(context.Background(), window())
			assert.False(t, reply.Success)
			assert.Equal(t, tc.want, reply.Error)
		})
	}
}

func TestSend_Status500ContainsCode(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	reply := c.Send(context.Background(), window())
	assert.False(t, reply.Success)
	assert.Contains(t, reply.Error, "status: 500")
}

func TestSend_MalformedBody(t *testing.T) {
	bodies := map[string]string{
		"not json":      `this is not json`,
		"truncated":     `{"message":{"content":"hi"`,
		"wrong type":    `{"message":{"content":42}}`,
		"message array": `{"message":[]}`,
		"no content":    `{"message":{"role":"assistant"}}`,
		"null content":  `{"message":{"role":"assistant","content":null}}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, body)
			})

			reply := c.Send(context.Background(), window())
			assert.False(t, reply.Success)
			assert.True(t, strings.HasPrefix(reply.Error, "Failed to parse response: "), reply.Error)
		})
	}
}

func TestSend_EmptyResponse(t *testing.T) {
	for _, body := range []string{`{}`, `{"message":null}`, `{"model":"llama3.2","done":true}`} {
		t.Run(body, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, body)
			})

			reply := c.Send(context.Background(), window())
			assert.Equal(t, Reply{Success: false, Error: "Empty response from Ollama"}, reply)
		})
	}
}

func TestSend_EmptyContentIsSuccess(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"message":{"role":"assistant","content":""}}`)
	})

	reply := c.Send(context.Background(), window())
	assert.True(t, reply.Success)
	assert.Empty(t, reply.Response)

	data, err := json.Marshal(reply)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, string(data))
}

// =============================================================================
// TYPED ERRORS
// =============================================================================

func TestChat_ErrorTypes(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Chat(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, IsStatus(err))
	assert.False(t, IsConnection(err))

	var ce *ClientError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, http.StatusBadGateway, ce.StatusCode)
	assert.Equal(t, "status", ce.Type.String())
}

func TestChat_EmptyIsSentinel(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	})

	_, err := c.Chat(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.True(t, IsEmpty(err))
}

func TestChat_DecodeUnwraps(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `nope`)
	})

	_, err := c.Chat(context.Background(), nil)
	assert.True(t, IsDecode(err))
	var syntaxErr *json.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
}

func TestErrorTypeOf_Foreign(t *testing.T) {
	assert.Equal(t, ErrTypeUnknown, ErrorTypeOf(errors.New("x")))
	assert.Equal(t, "unknown", ErrTypeUnknown.String())
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

func TestListModels(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/tags", r.URL.Path)
		io.WriteString(w, `{"models":[{"name":"llama3.2:latest","size":2019393189},{"name":"qwen2.5:7b","size":4683087332}]}`)
	})

	models, err := c.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "llama3.2:latest", models[0].Name)
	assert.NoError(t, c.CheckRunning(context.Background()))
}

func TestCheckRunning_Down(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: url})
	err := c.CheckRunning(context.Background())
	assert.True(t, IsConnection(err))
}

func TestCheckRunning_HealthTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, HealthTimeout: 50 * time.Millisecond})
	start := time.Now()
	err := c.CheckRunning(context.Background())
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func TestSend_MetadataDoesNotDecideOutcome(t *testing.T) {
	bodies := map[string]string{
		"empty created_at":  `{"created_at":"","message":{"role":"assistant","content":"hi"}}`,
		"string done":       `{"done":"true","message":{"role":"assistant","content":"hi"}}`,
		"fractional counts": `{"eval_count":1.5,"message":{"role":"assistant","content":"hi"}}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, body)
			})

			assert.Equal(t, Succeeded("hi"), c.Send(context.Background(), window()))
		})
	}
}

func TestChat_KeepsWellFormedMetadata(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"model":"llama3.2","done":true,"eval_count":"x","eval_duration":1000000000,`+
			`"message":{"role":"assistant","content":"hi"}}`)
	})

	resp, err := c.Chat(context.Background(), FromTranscript(window()))
	require.NoError(t, err)
	assert.Equal(t, "llama3.2", resp.Model)
	assert.True(t, resp.Done)
	assert.Zero(t, resp.EvalCount)
	assert.Equal(t, int64(time.Second), resp.EvalDuration)
	assert.Equal(t, &Message{Role: "assistant", Content: "hi"}, resp.Message)
}

func TestChatResponse_TokensPerSecond(t *testing.T) {
	tests := []struct {
		name         string
		evalCount    int
		evalDuration int64
		want         float64
	}{
		{"normal", 100, int64(time.Second), 100.0},
		{"zero duration", 100, 0, 0.0},
		{"fast", 1000, int64(100 * time.Millisecond), 10000.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := &ChatResponse{EvalCount: tc.evalCount, EvalDuration: tc.evalDuration}
			assert.InDelta(t, tc.want, resp.TokensPerSecond(), tc.want*0.01)
		})
	}
}

func TestFromTranscript(t *testing.T) {
	got := FromTranscript(window())
	assert.Equal(t, []Message{{Role: "system", Content: "be cute"}, {Role: "user", Content: "hi"}}, got)
}
