package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

// FlagValues holds parsed flags with explicit set tracking, so only flags
// the user actually passed override the config file.
type FlagValues struct {
	Engine        string
	EngineSet     bool
	WhisperBin    string
	WhisperBinSet bool
	ModelPath     string
	ModelPathSet  bool

	APIEndpoint       string
	APIEndpointSet    bool
	Token             string
	TokenSet          bool
	RemoteModel       string
	RemoteModelSet    bool
	Language          string
	LanguageSet       bool
	Prompt            string
	PromptSet         bool
	TextPath          string
	TextPathSet       bool
	ExtraConfig       string
	ExtraConfigSet    bool
	RequestTimeout    int
	RequestTimeoutSet bool
	MaxRetry          int
	MaxRetrySet       bool
	RetryBaseDelay    float64
	RetryBaseDelaySet bool
	EnableHTTP2       bool
	EnableHTTP2Set    bool
	VerifySSL         bool
	VerifySSLSet      bool

	InputDevice     string
	InputDeviceSet  bool
	InputChannel    int
	InputChannelSet bool

	ToggleKey        string
	ToggleKeySet     bool
	HoldKey          string
	HoldKeySet       bool
	PasteKey         string
	PasteKeySet      bool
	ScreenshotKey    string
	ScreenshotKeySet bool
	ScreenshotCmd    string
	ScreenshotCmdSet bool

	CacheDir        string
	CacheDirSet     bool
	KeepCache       bool
	KeepCacheSet    bool
	Notification    bool
	NotificationSet bool

	LogLevel     string
	LogLevelSet  bool
	LogFormat    string
	LogFormatSet bool

	OutputPath    string
	OutputPathSet bool
}

type stringFlag struct {
	target *string
	set    *bool
}

func (s *stringFlag) String() string {
	if s == nil || s.target == nil {
		return ""
	}
	return *s.target
}

func (s *stringFlag) Set(v string) error {
	if s.target != nil {
		*s.target = v
	}
	if s.set != nil {
		*s.set = true
	}
	return nil
}

type intFlag struct {
	target *int
	set    *bool
}

func (i *intFlag) String() string {
	if i == nil || i.target == nil {
		return ""
	}
	return fmt.Sprintf("%d", *i.target)
}

func (i *intFlag) Set(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	if i.target != nil {
		*i.target = n
	}
	if i.set != nil {
		*i.set = true
	}
	return nil
}

type floatFlag struct {
	target *float64
	set    *bool
}

func (f *floatFlag) String() string {
	if f == nil || f.target == nil {
		return ""
	}
	return fmt.Sprintf("%v", *f.target)
}

func (f *floatFlag) Set(v string) error {
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return err
	}
	if f.target != nil {
		*f.target = n
	}
	if f.set != nil {
		*f.set = true
	}
	return nil
}

type boolFlag struct {
	target *bool
	set    *bool
}

func (b *boolFlag) String() string {
	if b == nil || b.target == nil {
		return ""
	}
	return fmt.Sprintf("%v", *b.target)
}

func parseBoolExt(v string) (bool, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "1", "true", "yes", "y":
		return true, nil
	case "0", "false", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean: %s", v)
}

func (b *boolFlag) Set(v string) error {
	n, err := parseBoolExt(v)
	if err != nil {
		return err
	}
	if b.target != nil {
		*b.target = n
	}
	if b.set != nil {
		*b.set = true
	}
	return nil
}

// BindFlags registers all flags and returns the populated FlagValues.
func BindFlags(fs *flag.FlagSet) *FlagValues {
	fv := &FlagValues{}

	fs.Var(&stringFlag{&fv.Engine, &fv.EngineSet}, "engine", "transcription engine (whisper or remote)")
	fs.Var(&stringFlag{&fv.WhisperBin, &fv.WhisperBinSet}, "whisper-bin", "path to whisper-cli binary")
	fs.Var(&stringFlag{&fv.ModelPath, &fv.ModelPathSet}, "model-path", "path to whisper model file")

	fs.Var(&stringFlag{&fv.APIEndpoint, &fv.APIEndpointSet}, "api-endpoint", "remote ASR endpoint URL")
	fs.Var(&stringFlag{&fv.Token, &fv.TokenSet}, "token", "authorization token")
	fs.Var(&stringFlag{&fv.RemoteModel, &fv.RemoteModelSet}, "remote-model", "remote model name")
	fs.Var(&stringFlag{&fv.Language, &fv.LanguageSet}, "language", "language")
	fs.Var(&stringFlag{&fv.Prompt, &fv.PromptSet}, "prompt", "prompt")
	fs.Var(&stringFlag{&fv.TextPath, &fv.TextPathSet}, "text-path", "JSON path to extract text")
	fs.Var(&stringFlag{&fv.ExtraConfig, &fv.ExtraConfigSet}, "extra-config", "extra JSON config to merge into request payload")
	fs.Var(&intFlag{&fv.RequestTimeout, &fv.RequestTimeoutSet}, "request-timeout", "request timeout seconds")
	fs.Var(&intFlag{&fv.MaxRetry, &fv.MaxRetrySet}, "max-retry", "max retry attempts")
	fs.Var(&floatFlag{&fv.RetryBaseDelay, &fv.RetryBaseDelaySet}, "retry-base-delay", "retry base delay seconds (float)")
	fs.Var(&boolFlag{&fv.EnableHTTP2, &fv.EnableHTTP2Set}, "enable-http2", "enable HTTP/2 (true/false)")
	fs.Var(&boolFlag{&fv.VerifySSL, &fv.VerifySSLSet}, "verify-ssl", "verify TLS certificates (true/false)")

	fs.Var(&stringFlag{&fv.InputDevice, &fv.InputDeviceSet}, "input-device", "input device UID (empty = system default)")
	fs.Var(&intFlag{&fv.InputChannel, &fv.InputChannelSet}, "input-channel", "input channel, 1-based (0 = auto)")

	fs.Var(&stringFlag{&fv.ToggleKey, &fv.ToggleKeySet}, "toggle-key", "toggle recording hotkey (e.g. fn, ctrl+shift+d)")
	fs.Var(&stringFlag{&fv.HoldKey, &fv.HoldKeySet}, "hold-key", "push-to-talk hotkey")
	fs.Var(&stringFlag{&fv.PasteKey, &fv.PasteKeySet}, "paste-key", "paste last transcription hotkey")
	fs.Var(&stringFlag{&fv.ScreenshotKey, &fv.ScreenshotKeySet}, "screenshot-key", "screenshot hotkey")
	fs.Var(&stringFlag{&fv.ScreenshotCmd, &fv.ScreenshotCmdSet}, "screenshot-cmd", "command to run for the screenshot action")

	fs.Var(&stringFlag{&fv.CacheDir, &fv.CacheDirSet}, "cache-dir", "cache directory")
	fs.Var(&boolFlag{&fv.KeepCache, &fv.KeepCacheSet}, "keep-cache", "keep cache files (true/false)")
	fs.Var(&boolFlag{&fv.Notification, &fv.NotificationSet}, "notification", "enable notifications (true/false)")

	fs.Var(&stringFlag{&fv.LogLevel, &fv.LogLevelSet}, "log-level", "log level (debug, info, warn, error)")
	fs.Var(&stringFlag{&fv.LogFormat, &fv.LogFormatSet}, "log-format", "log format (console, json)")

	fs.Var(&stringFlag{&fv.OutputPath, &fv.OutputPathSet}, "output", "output txt path for -file mode")

	return fv
}

// ApplyFlags applies present flags to the config.
func ApplyFlags(cfg *Config, fv *FlagValues) {
	if fv.EngineSet {
		cfg.Engine = fv.Engine
	}
	if fv.WhisperBinSet {
		cfg.WhisperBin = fv.WhisperBin
	}
	if fv.ModelPathSet {
		cfg.ModelPath = fv.ModelPath
	}
	if fv.APIEndpointSet {
		cfg.APIEndpoint = fv.APIEndpoint
	}
	if fv.TokenSet {
		cfg.Token = fv.Token
	}
	if fv.RemoteModelSet {
		cfg.RemoteModel = fv.RemoteModel
	}
	if fv.LanguageSet {
		cfg.Language = fv.Language
	}
	if fv.PromptSet {
		cfg.Prompt = fv.Prompt
	}
	if fv.TextPathSet {
		cfg.TextPath = fv.TextPath
	}
	if fv.ExtraConfigSet {
		cfg.ExtraConfig = fv.ExtraConfig
	}
	if fv.RequestTimeoutSet {
		cfg.RequestTimeout = fv.RequestTimeout
	}
	if fv.MaxRetrySet {
		cfg.MaxRetry = fv.MaxRetry
	}
	if fv.RetryBaseDelaySet {
		cfg.RetryBaseDelay = fv.RetryBaseDelay
	}
	if fv.EnableHTTP2Set {
		cfg.EnableHTTP2 = fv.EnableHTTP2
	}
	if fv.VerifySSLSet {
		cfg.VerifySSL = fv.VerifySSL
	}
	if fv.InputDeviceSet {
		cfg.InputDevice = fv.InputDevice
	}
	if fv.InputChannelSet {
		cfg.InputChannel = fv.InputChannel
	}
	if fv.ToggleKeySet {
		cfg.ToggleKey = fv.ToggleKey
	}
	if fv.HoldKeySet {
		cfg.HoldKey = fv.HoldKey
	}
	if fv.PasteKeySet {
		cfg.PasteKey = fv.PasteKey
	}
	if fv.ScreenshotKeySet {
		cfg.ScreenshotKey = fv.ScreenshotKey
	}
	if fv.ScreenshotCmdSet {
		cfg.ScreenshotCmd = fv.ScreenshotCmd
	}
	if fv.CacheDirSet {
		cfg.CacheDir = fv.CacheDir
	}
	if fv.KeepCacheSet {
		cfg.KeepCache = fv.KeepCache
	}
	if fv.NotificationSet {
		cfg.Notification = fv.Notification
	}
	if fv.LogLevelSet {
		cfg.LogLevel = fv.LogLevel
	}
	if fv.LogFormatSet {
		cfg.LogFormat = fv.LogFormat
	}
}
