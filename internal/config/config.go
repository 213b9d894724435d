// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/cody/internal/hotkey"
	"github.com/jeranaias/cody/internal/logging"
	"github.com/jeranaias/cody/internal/mode"
	"github.com/jeranaias/cody/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// DefaultSystemPrompt is the pet's persona. It asks for short, friendly,
// Korean answers.
const DefaultSystemPrompt = `너는 개발자의 데스크톱 펫이야. 이름은 "코디"(Cody)야.

성격:
- 친근하고 귀엽게 말해 (반말 사용)
- 이모지를 적당히 사용해
- 개발 관련 질문에 도움을 줄 수 있어
- 짧고 간결하게 대답해 (2-3문장)
- 가끔 귀여운 리액션을 해 (예: "우와!", "헤헤", "음...")

규칙:
- 한국어로 대답해
- 너무 길게 설명하지 마
- 모르는 건 솔직하게 말해`

const (
	// CurrentVersion is written into new config files.
	CurrentVersion = "1"
	// DefaultHistoryWindow is how many past messages go with each prompt.
	DefaultHistoryWindow = 10
	// envHome overrides the config directory.
	envHome = "CODY_HOME"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete cody configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Ollama  OllamaConfig  `toml:"ollama" json:"ollama"`
	Chat    ChatConfig    `toml:"chat" json:"chat"`
	Pet     PetConfig     `toml:"pet" json:"pet"`
	Storage StorageConfig `toml:"storage" json:"storage"`
	Log     LogConfig     `toml:"log" json:"log"`
}

// OllamaConfig points at the local inference server.
type OllamaConfig struct {
	// Endpoint is the base URL of the Ollama server
	Endpoint string `toml:"endpoint" json:"endpoint"`
	// Model is sent with every chat request
	Model string `toml:"model" json:"model"`
	// RequestTimeout bounds a chat round trip; 0 leaves it to the transport
	RequestTimeout Duration `toml:"request_timeout" json:"request_timeout"`
	// HealthTimeout bounds health checks
	HealthTimeout Duration `toml:"health_timeout" json:"health_timeout"`
}

// ChatConfig shapes each prompt.
type ChatConfig struct {
	// HistoryWindow is the number of stored messages sent after the preamble
	HistoryWindow int `toml:"history_window" json:"history_window"`
	// SystemPrompt is the preamble sent first with every request
	SystemPrompt string `toml:"system_prompt" json:"system_prompt"`
	// MaxStored caps the in-memory transcript (0 = unbounded)
	MaxStored int `toml:"max_stored" json:"max_stored"`
	// MaxPerMinute throttles chat submissions (0 = unlimited)
	MaxPerMinute int `toml:"max_per_minute" json:"max_per_minute"`
}

// PetConfig holds startup state for the overlay.
type PetConfig struct {
	// DefaultSize is the character size when nothing was persisted
	DefaultSize int `toml:"default_size" json:"default_size"`
	// DefaultMode is the interaction mode when nothing was persisted
	DefaultMode mode.Mode `toml:"default_mode" json:"default_mode"`
	// Hotkey cycles the interaction mode
	Hotkey string `toml:"hotkey" json:"hotkey"`
	// RestoreState reloads the last size and mode from the settings store
	RestoreState bool `toml:"restore_state" json:"restore_state"`
}

// StorageConfig locates the settings database.
type StorageConfig struct {
	// Path of the SQLite settings file (empty = ~/.cody/settings.db)
	Path string `toml:"path" json:"path"`
	// Disabled keeps settings in memory only
	Disabled bool `toml:"disabled" json:"disabled"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string `toml:"level" json:"level"`
	// File receives logs (empty = ~/.cody/cody.log when the UI owns the terminal)
	File string `toml:"file" json:"file"`
}

// Duration is a time.Duration that reads and writes as "30s" in both TOML
// and JSON.
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Bare integers are
// read as seconds.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		d.Duration = 0
		return nil
	}
	if secs, err := strconv.Atoi(s); err == nil {
		d.Duration = time.Duration(secs) * time.Second
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,

		Ollama: OllamaConfig{
			Endpoint:      "http://localhost:11434",
			Model:         "llama3.2",
			HealthTimeout: Duration{5 * time.Second},
		},

		Chat: ChatConfig{
			HistoryWindow: DefaultHistoryWindow,
			SystemPrompt:  DefaultSystemPrompt,
		},

		Pet: PetConfig{
			DefaultSize:  200,
			DefaultMode:  mode.Interactive,
			Hotkey:       hotkey.DefaultAccelerator,
			RestoreState: true,
		},

		Log: LogConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the cody configuration directory path.
// CODY_HOME overrides the default ~/.cody.
func ConfigDir() (string, error) {
	if dir := os.Getenv(envHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".cody"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// StoragePath resolves the settings database path.
func (c *Config) StoragePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.db"), nil
}

// LogPath resolves the log file path used while the terminal UI runs.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cody.log"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last. A file that exists but fails to
// parse is reported alongside the defaults so callers can warn and go on.
func Load() (*Config, error) {
	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := pathFn()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		cfg, err := LoadFromPath(path)
		if err != nil {
			return finish(Default()), err
		}
		return cfg, nil
	}

	cfg := finish(Default())
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. Files ending in .json are read as JSON, anything else as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	finish(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

func finish(cfg *Config) *Config {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills in any missing values with defaults. Zero values that
// carry meaning (MaxStored, MaxPerMinute, RequestTimeout) are left alone.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Ollama.Endpoint == "" {
		c.Ollama.Endpoint = defaults.Ollama.Endpoint
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = defaults.Ollama.Model
	}
	if c.Ollama.HealthTimeout.Duration == 0 {
		c.Ollama.HealthTimeout = defaults.Ollama.HealthTimeout
	}
	if c.Chat.HistoryWindow == 0 {
		c.Chat.HistoryWindow = defaults.Chat.HistoryWindow
	}
	if strings.TrimSpace(c.Chat.SystemPrompt) == "" {
		c.Chat.SystemPrompt = defaults.Chat.SystemPrompt
	}
	if c.Pet.DefaultSize == 0 {
		c.Pet.DefaultSize = defaults.Pet.DefaultSize
	}
	if c.Pet.Hotkey == "" {
		c.Pet.Hotkey = defaults.Pet.Hotkey
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file atomically.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# cody configuration file")
	fmt.Fprintln(&buf, "# Changes are picked up while cody is running.")
	fmt.Fprintln(&buf)

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file atomically.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns ValidateErrors when
// anything is off.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Ollama
	if u, err := url.Parse(c.Ollama.Endpoint); err != nil {
		add("ollama.endpoint", "invalid URL: %v", err)
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("ollama.endpoint", "must be an http(s) URL with a host, got %q", c.Ollama.Endpoint)
	}
	if strings.TrimSpace(c.Ollama.Model) == "" {
		add("ollama.model", "cannot be empty")
	}
	if c.Ollama.RequestTimeout.Duration < 0 {
		add("ollama.request_timeout", "cannot be negative")
	}
	if c.Ollama.HealthTimeout.Duration < 0 {
		add("ollama.health_timeout", "cannot be negative")
	}

	// Chat
	if c.Chat.HistoryWindow < 1 {
		add("chat.history_window", "must be at least 1, got %d", c.Chat.HistoryWindow)
	}
	if c.Chat.MaxStored < 0 {
		add("chat.max_stored", "cannot be negative")
	} else if c.Chat.MaxStored > 0 && c.Chat.MaxStored < c.Chat.HistoryWindow {
		add("chat.max_stored", "must be 0 or at least history_window (%d), got %d", c.Chat.HistoryWindow, c.Chat.MaxStored)
	}
	if c.Chat.MaxPerMinute < 0 {
		add("chat.max_per_minute", "cannot be negative")
	}

	// Pet
	if c.Pet.DefaultSize <= 0 {
		add("pet.default_size", "must be positive, got %d", c.Pet.DefaultSize)
	}
	if !c.Pet.DefaultMode.Valid() {
		add("pet.default_mode", "invalid mode %d", int(c.Pet.DefaultMode))
	}
	if _, err := hotkey.Parse(c.Pet.Hotkey); err != nil {
		add("pet.hotkey", "%v", err)
	}

	// Log
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		add("log.level", "%v", err)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - CODY_OLLAMA_URL: overrides ollama.endpoint
//   - CODY_MODEL: overrides ollama.model
//   - CODY_HISTORY_WINDOW: overrides chat.history_window
//   - CODY_SYSTEM_PROMPT: overrides chat.system_prompt
//   - CODY_LOG_LEVEL: overrides log.level
//   - CODY_NO_STORAGE: set to "1" or "true" to keep settings in memory
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CODY_OLLAMA_URL"); v != "" {
		c.Ollama.Endpoint = v
	}
	if v := os.Getenv("CODY_MODEL"); v != "" {
		c.Ollama.Model = v
	}
	if v := os.Getenv("CODY_HISTORY_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Chat.HistoryWindow = n
		}
	}
	if v := os.Getenv("CODY_SYSTEM_PROMPT"); v != "" {
		c.Chat.SystemPrompt = v
	}
	if v := os.Getenv("CODY_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CODY_NO_STORAGE"); v != "" {
		c.Storage.Disabled = v == "1" || strings.EqualFold(v, "true")
	}
}

// =============================================================================
// UTILITY
// =============================================================================

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String renders the config as TOML for display.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}
