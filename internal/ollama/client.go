// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for the local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/cody/internal/transcript"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the Ollama client. Its Error text is
// exactly what ends up in Reply.Error.
type ClientError struct {
	Type       ErrorType
	Message    string
	StatusCode int // set for ErrTypeStatus
	Cause      error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown    ErrorType = iota
	ErrTypeConnection           // request never got a response
	ErrTypeStatus               // response with a non-2xx status
	ErrTypeDecode               // 2xx body that is not valid JSON for the schema
	ErrTypeEmpty                // valid body without a message
)

// String returns a short name for logs.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeStatus:
		return "status"
	case ErrTypeDecode:
		return "decode"
	case ErrTypeEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// ErrEmptyResponse is returned when the server answers 2xx with a body that
// has no message field.
var ErrEmptyResponse = &ClientError{Type: ErrTypeEmpty, Message: "Empty response from Ollama"}

var errMissingContent = errors.New("message has no content")

func connectionError(err error) *ClientError {
	return &ClientError{Type: ErrTypeConnection, Message: "Failed to connect to Ollama", Cause: err}
}

func statusError(resp *http.Response) *ClientError {
	status := resp.Status
	if status == "" {
		status = strconv.Itoa(resp.StatusCode)
		if text := http.StatusText(resp.StatusCode); text != "" {
			status += " " + text
		}
	}
	return &ClientError{
		Type:       ErrTypeStatus,
		Message:    "Ollama returned status: " + status,
		StatusCode: resp.StatusCode,
	}
}

func decodeError(err error) *ClientError {
	return &ClientError{Type: ErrTypeDecode, Message: "Failed to parse response", Cause: err}
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

const (
	// DefaultBaseURL is where a stock Ollama install listens.
	DefaultBaseURL = "http://localhost:11434"
	// DefaultModel is the model the pet talks through.
	DefaultModel = "llama3.2"
	// DefaultHealthTimeout bounds CheckRunning and ListModels.
	DefaultHealthTimeout = 5 * time.Second
)

// ClientConfig holds configuration options for the Ollama client.
type ClientConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434)
	BaseURL string

	// Model is sent with every chat request (default: "llama3.2")
	Model string

	// RequestTimeout bounds a chat round trip. Zero leaves it to the
	// transport, which never gives up on its own.
	RequestTimeout time.Duration

	// HealthTimeout bounds health checks and model listing (default: 5s)
	HealthTimeout time.Duration

	// HTTPClient overrides the underlying client (tests, proxies).
	HTTPClient *http.Client

	// Logger receives request outcomes at debug level.
	Logger *zap.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:       DefaultBaseURL,
		Model:         DefaultModel,
		HealthTimeout: DefaultHealthTimeout,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Ollama API.
//
// The Client is safe for concurrent use; SetModel may race with in-flight
// requests, which keep the model they started with.
type Client struct {
	mu         sync.RWMutex
	baseURL    string
	model      string
	health     time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Ollama client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new Ollama client with custom configuration.
// Zero values are filled with defaults.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	c := &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		model:      config.Model,
		health:     config.HealthTimeout,
		httpClient: config.HTTPClient,
		logger:     config.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.health <= 0 {
		c.health = DefaultHealthTimeout
	}
	if c.httpClient == nil {
		// SECURITY: TLS not required - Ollama runs locally over HTTP
		c.httpClient = &http.Client{Timeout: config.RequestTimeout}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// Send runs one chat turn with the given prompt window and classifies the
// outcome into a Reply. It never returns a Go error.
func (c *Client) Send(ctx context.Context, window []transcript.Message) Reply {
	resp, err := c.Chat(ctx, FromTranscript(window))
	if err != nil {
		var ce *ClientError
		kind := ErrTypeUnknown
		if errors.As(err, &ce) {
			kind = ce.Type
		}
		c.logger.Debug("chat turn failed", zap.Stringer("kind", kind), zap.Error(err))
		return Failed(err)
	}
	c.logger.Debug("chat turn succeeded",
		zap.String("model", resp.Model),
		zap.Duration("total", resp.TotalTime()),
		zap.Int("eval_count", resp.EvalCount))
	return Succeeded(resp.Message.Content)
}

// Chat sends a non-streaming chat request and returns the decoded response.
// Every error is a *ClientError. A nil error guarantees resp.Message != nil.
func (c *Client) Chat(ctx context.Context, messages []Message) (*ChatResponse, error) {
	reqBody := ChatRequest{
		Model:    c.Model(),
		Messages: messages,
		Stream:   false,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint()+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, connectionError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, connectionError(err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, decodeError(err)
	}

	var reply replyBody
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, decodeError(err)
	}
	if reply.Message == nil {
		return nil, ErrEmptyResponse
	}
	if reply.Message.Content == nil {
		return nil, decodeError(errMissingContent)
	}

	var result ChatResponse
	// metadata only; type errors leave the affected fields zero
	_ = json.Unmarshal(data, &result)
	result.Message = &Message{Role: reply.Message.Role, Content: *reply.Message.Content}
	return &result, nil
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that Ollama is reachable by listing its models.
// It is bounded by the health timeout regardless of ctx.
func (c *Client) CheckRunning(ctx context.Context) error {
	_, err := c.ListModels(ctx)
	return err
}

// ListModels retrieves all locally installed models from /api/tags.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.health)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint()+"/api/tags", nil)
	if err != nil {
		return nil, connectionError(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, connectionError(err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var result ListModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, decodeError(err)
	}
	return result.Models, nil
}

// =============================================================================
// UTILITY METHODS
// =============================================================================

// Endpoint returns the base URL requests are sent to.
func (c *Client) Endpoint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// Model returns the model sent with chat requests.
func (c *Client) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// SetModel changes the model used by subsequent requests.
func (c *Client) SetModel(model string) {
	if model == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = model
}

// ErrorTypeOf returns the classification of err, or ErrTypeUnknown.
func ErrorTypeOf(err error) ErrorType {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type
	}
	return ErrTypeUnknown
}

// IsConnection reports whether err means Ollama could not be reached.
func IsConnection(err error) bool {
	return ErrorTypeOf(err) == ErrTypeConnection
}

// IsStatus reports whether err is a non-success HTTP status.
func IsStatus(err error) bool {
	return ErrorTypeOf(err) == ErrTypeStatus
}

// IsDecode reports whether err is a malformed response body.
func IsDecode(err error) bool {
	return ErrorTypeOf(err) == ErrTypeDecode
}

// IsEmpty reports whether err is a well-formed body without a message.
func IsEmpty(err error) bool {
	return ErrorTypeOf(err) == ErrTypeEmpty
}

// Helper to drain response body so the connection can be reused.
func drainAndClose(r io.ReadCloser) {
	io.Copy(io.Discard, r)
	r.Close()
}
