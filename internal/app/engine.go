package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ItzR3NO/R3VIB3-MacOS/internal/asr"
	"github.com/ItzR3NO/R3VIB3-MacOS/internal/config"
	"github.com/ItzR3NO/R3VIB3-MacOS/internal/whisper"
)

// Engine turns a prepared audio file into text. Both the local whisper
// subprocess and the remote upload client satisfy it.
type Engine interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// NewEngine builds the engine selected by the config.
func NewEngine(cfg config.Config, log *zap.SugaredLogger) (Engine, error) {
	switch cfg.Engine {
	case config.EngineWhisper:
		bin, err := whisper.LocateBinary(cfg.WhisperBin)
		if err != nil {
			return nil, err
		}
		return whisper.NewInvoker(bin, cfg.ModelPath, whisper.ExecRunner{}, log), nil
	case config.EngineRemote:
		client, err := asr.New(asr.Options{
			Endpoint:       cfg.APIEndpoint,
			Token:          cfg.Token,
			Model:          cfg.RemoteModel,
			Language:       cfg.Language,
			Prompt:         cfg.Prompt,
			TextPath:       cfg.TextPath,
			ExtraJSON:      cfg.ExtraConfig,
			MaxRetry:       cfg.MaxRetry,
			RetryBaseDelay: cfg.RetryBaseDelay,
			RequestTimeout: cfg.RequestTimeout,
			VerifySSL:      cfg.VerifySSL,
			EnableHTTP2:    cfg.EnableHTTP2,
		}, nil, log)
		if err != nil {
			return nil, err
		}
		return remoteEngine{client: client}, nil
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
}

type remoteEngine struct {
	client *asr.Client
}

func (r remoteEngine) Transcribe(ctx context.Context, audioPath string) (string, error) {
	text, _, err := r.client.Transcribe(ctx, audioPath)
	return text, err
}
