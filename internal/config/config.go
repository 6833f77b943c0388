package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ItzR3NO/R3VIB3-MacOS/internal/hotkey"
)

// Engine selection values.
const (
	EngineWhisper = "whisper"
	EngineRemote  = "remote"
)

// Config holds configurable parameters.
type Config struct {
	Engine     string `json:"ENGINE"`
	WhisperBin string `json:"WHISPER_BIN"`
	ModelPath  string `json:"MODEL_PATH"`

	APIEndpoint    string  `json:"API_ENDPOINT"`
	Token          string  `json:"TOKEN"`
	RemoteModel    string  `json:"REMOTE_MODEL"`
	Language       string  `json:"LANGUAGE"`
	Prompt         string  `json:"PROMPT"`
	TextPath       string  `json:"TEXT_PATH"`
	ExtraConfig    string  `json:"ExtraConfig"`
	RequestTimeout int     `json:"REQUEST_TIMEOUT"`
	MaxRetry       int     `json:"MAX_RETRY"`
	RetryBaseDelay float64 `json:"RETRY_BASE_DELAY"`
	EnableHTTP2    bool    `json:"ENABLE_HTTP2"`
	VerifySSL      bool    `json:"VERIFY_SSL"`

	InputDevice  string `json:"INPUT_DEVICE"`
	InputChannel int    `json:"INPUT_CHANNEL"`

	ToggleKey     string `json:"TOGGLE_KEY"`
	HoldKey       string `json:"HOLD_KEY"`
	PasteKey      string `json:"PASTE_KEY"`
	ScreenshotKey string `json:"SCREENSHOT_KEY"`
	ScreenshotCmd string `json:"SCREENSHOT_CMD"`

	CacheDir     string `json:"CACHE_DIR"`
	KeepCache    bool   `json:"KEEP_CACHE"`
	Notification bool   `json:"NOTIFICATION"`

	LogLevel  string `json:"LOG_LEVEL"`
	LogFormat string `json:"LOG_FORMAT"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Engine:         EngineWhisper,
		WhisperBin:     "",
		ModelPath:      "",
		APIEndpoint:    "",
		Token:          "",
		RemoteModel:    "",
		Language:       "",
		Prompt:         "",
		TextPath:       "text",
		ExtraConfig:    "",
		RequestTimeout: 30,
		MaxRetry:       3,
		RetryBaseDelay: 0.5,
		EnableHTTP2:    true,
		VerifySSL:      true,
		InputDevice:    "",
		InputChannel:   0,
		ToggleKey:      "fn",
		HoldKey:        "",
		PasteKey:       "ctrl+shift+v",
		ScreenshotKey:  "",
		ScreenshotCmd:  "",
		CacheDir:       "",
		KeepCache:      false,
		Notification:   false,
		LogLevel:       "info",
		LogFormat:      "console",
	}
}

// Load loads config from JSON file if provided.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveDefault writes a default config JSON to the provided path.
func SaveDefault(path string) error {
	cfg := DefaultConfig()
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate verifies config fields and returns an error if any value is invalid.
func Validate(cfg *Config) error {
	switch cfg.Engine {
	case EngineWhisper, EngineRemote:
	default:
		return fmt.Errorf("invalid ENGINE: %s (allowed: %s, %s)", cfg.Engine, EngineWhisper, EngineRemote)
	}
	if cfg.Engine == EngineWhisper && cfg.ModelPath == "" {
		return fmt.Errorf("MODEL_PATH is required for the %s engine", EngineWhisper)
	}
	if cfg.Engine == EngineRemote && cfg.APIEndpoint == "" {
		return fmt.Errorf("API_ENDPOINT is required for the %s engine", EngineRemote)
	}
	if cfg.InputChannel < 0 || cfg.InputChannel > 32 {
		return fmt.Errorf("invalid INPUT_CHANNEL: %d (allowed 0..32, 0 = auto)", cfg.InputChannel)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("invalid REQUEST_TIMEOUT: %d (must be > 0)", cfg.RequestTimeout)
	}
	if cfg.MaxRetry < 1 {
		return fmt.Errorf("invalid MAX_RETRY: %d (must be >= 1)", cfg.MaxRetry)
	}
	if cfg.RetryBaseDelay < 0 {
		return fmt.Errorf("invalid RETRY_BASE_DELAY: %v (must be >= 0)", cfg.RetryBaseDelay)
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL: %s (allowed: debug, info, warn, error)", cfg.LogLevel)
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT: %s (allowed: console, json)", cfg.LogFormat)
	}
	if _, err := Bindings(cfg); err != nil {
		return err
	}
	return nil
}

// Bindings parses the configured hotkey specs into action bindings.
// Empty specs leave the action unbound.
func Bindings(cfg *Config) (map[hotkey.Action]hotkey.Hotkey, error) {
	specs := map[hotkey.Action]string{
		hotkey.ActionToggle:     cfg.ToggleKey,
		hotkey.ActionHold:       cfg.HoldKey,
		hotkey.ActionPaste:      cfg.PasteKey,
		hotkey.ActionScreenshot: cfg.ScreenshotKey,
	}
	out := make(map[hotkey.Action]hotkey.Hotkey)
	for action, spec := range specs {
		if spec == "" {
			continue
		}
		hk, err := hotkey.ParseSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("invalid %s hotkey %q: %w", action, spec, err)
		}
		out[action] = hk
	}
	return out, nil
}

// InitCacheDir validates/creates the configured cache directory.
// It mutates cfg.CacheDir to an absolute path or clears it on failure.
func InitCacheDir(cfg *Config, log *zap.SugaredLogger) {
	if cfg.CacheDir == "" {
		return
	}
	abs, err := filepath.Abs(cfg.CacheDir)
	if err != nil {
		log.Warnw("cache-dir path invalid, falling back to cwd", "dir", cfg.CacheDir, "error", err)
		cfg.CacheDir = ""
		return
	}
	info, err := os.Stat(abs)
	if err == nil {
		if !info.IsDir() {
			log.Warnw("cache-dir exists but is not a directory, falling back to cwd", "dir", abs)
			cfg.CacheDir = ""
			return
		}
		cfg.CacheDir = abs
		return
	}
	if os.IsNotExist(err) {
		if err := os.MkdirAll(abs, 0755); err != nil {
			log.Warnw("cannot create cache-dir, falling back to cwd", "dir", abs, "error", err)
			cfg.CacheDir = ""
			return
		}
		cfg.CacheDir = abs
		return
	}
	log.Warnw("cannot access cache-dir, falling back to cwd", "dir", abs, "error", err)
	cfg.CacheDir = ""
}

// TempDir returns the directory to use for temporary files.
func TempDir(cfg *Config) string {
	if cfg.CacheDir != "" {
		return cfg.CacheDir
	}
	cwd, _ := os.Getwd()
	return cwd
}
