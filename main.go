package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ItzR3NO/R3VIB3-MacOS/internal/app"
	"github.com/ItzR3NO/R3VIB3-MacOS/internal/config"
	"github.com/ItzR3NO/R3VIB3-MacOS/internal/logging"
)

const usageText = `Usage: dictation [options]

Hold or toggle a hotkey, speak, and the transcription is pasted into the
focused application.

[modes]
  (default)            run the global-hotkey dictation loop
  -file <path>         transcribe an existing audio file and exit
  -save-config <path>  write a default config JSON and exit
  -config <path>       load config JSON (flags override file values)

[engine]
  -engine <whisper|remote>   transcription backend (default whisper)
  -whisper-bin <path>        whisper-cli binary (default: search PATH)
  -model-path <path>         whisper model file (required for whisper)
  -api-endpoint <url>        remote ASR endpoint (required for remote)
  -token <string>            authorization token for the remote endpoint
  -text-path <string>        JSON path to the text field in the response
                             example: "result.segments[0].text"

[audio]
  -input-device <uid>        input device UID (empty = system default)
  -input-channel <int>       1-based channel to record (0 = auto-pick loudest)

[hotkeys]    specs are modifiers joined with '+' and a key, or "fn"
  -toggle-key <spec>         start/stop recording (default "fn")
  -hold-key <spec>           push-to-talk: record while held
  -paste-key <spec>          paste the last transcription again
  -screenshot-key <spec>     run -screenshot-cmd
  modifiers: ctrl, opt/alt, shift, cmd; keys: a..z, 0..9, f1..f12,
  esc, space, tab, enter, delete

[misc]
  -cache-dir <path>          keep session audio and transcripts here
  -keep-cache <true|false>   archive instead of deleting temp files
  -notification <true|false> desktop notifications for status changes
  -log-level <level>         debug, info, warn, error (default info)
  -log-format <fmt>          console or json (default console)
  -output <path>             output .txt path for -file mode
`

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usageText) }

	configPath := fs.String("config", "", "config JSON path")
	saveConfig := fs.String("save-config", "", "write default config JSON to path and exit")
	filePath := fs.String("file", "", "transcribe an existing audio file and exit")
	fv := config.BindFlags(fs)
	_ = fs.Parse(os.Args[1:])

	if *saveConfig != "" {
		if err := config.SaveDefault(*saveConfig); err != nil {
			fmt.Fprintf(os.Stderr, "write default config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("default config written to %s\n", *saveConfig)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	config.ApplyFlags(&cfg, fv)
	if err := config.Validate(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	config.InitCacheDir(&cfg, log)

	if *filePath != "" {
		if err := app.RunFileMode(cfg, log, *filePath, fv.OutputPath); err != nil {
			log.Errorw("file mode failed", "error", err)
			os.Exit(3)
		}
		return
	}

	if err := app.RunRecordMode(cfg, log); err != nil {
		log.Errorw("record mode failed", "error", err)
		os.Exit(1)
	}
}
