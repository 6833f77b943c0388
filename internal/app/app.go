// Package app wires the event tap, recorder, converter and transcription
// engine together and owns all user-visible state.
package app

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/ItzR3NO/R3VIB3-MacOS/internal/audio/capture"
	"github.com/ItzR3NO/R3VIB3-MacOS/internal/audio/device"
	"github.com/ItzR3NO/R3VIB3-MacOS/internal/audio/wavconv"
	"github.com/ItzR3NO/R3VIB3-MacOS/internal/clipboard"
	"github.com/ItzR3NO/R3VIB3-MacOS/internal/config"
	"github.com/ItzR3NO/R3VIB3-MacOS/internal/hotkey"
	"github.com/ItzR3NO/R3VIB3-MacOS/internal/notify"
	"github.com/ItzR3NO/R3VIB3-MacOS/internal/permission"
	"github.com/ItzR3NO/R3VIB3-MacOS/internal/tap"
)

// App owns the dictation session lifecycle. All fields below the seams are
// touched only from the dispatcher goroutine.
type App struct {
	cfg      config.Config
	log      *zap.SugaredLogger
	notifier *notify.Notifier
	perms    permission.Checker
	recorder *capture.Recorder
	engine   Engine
	disp     *Dispatcher

	// seams for tests
	paste  func(string) error
	runCmd func(string) error

	busy       bool // a transcription is in flight
	lastText   string
	pasteReady bool
}

// New assembles an app from config against the real audio backend.
func New(cfg config.Config, log *zap.SugaredLogger) (*App, error) {
	engine, err := NewEngine(cfg, log)
	if err != nil {
		return nil, err
	}
	recorder := capture.New(
		device.PortAudioHost{},
		capture.PortAudioOpener{},
		config.TempDir(&cfg),
		cfg.InputDevice,
		cfg.InputChannel,
		log,
	)
	return &App{
		cfg:      cfg,
		log:      log,
		notifier: notify.New(cfg.Notification, "Dictation"),
		perms:    permission.EnvChecker{},
		recorder: recorder,
		engine:   engine,
		disp:     NewDispatcher(),
		paste:    clipboard.PasteText,
		runCmd:   runShellCommand,
	}, nil
}

// Callbacks returns the hotkey callbacks, to be invoked through the
// dispatcher the tap machine was constructed with.
func (a *App) Callbacks() tap.Callbacks {
	return tap.Callbacks{
		Start:     a.handleStart,
		End:       a.handleEnd,
		Keystroke: a.handleKeystroke,
	}
}

func (a *App) handleStart(action hotkey.Action) {
	switch action {
	case hotkey.ActionToggle:
		if a.recorder.Recording() {
			a.finishSession()
		} else {
			a.beginSession()
		}
	case hotkey.ActionHold:
		a.beginSession()
	case hotkey.ActionPaste:
		a.pasteLast()
	case hotkey.ActionScreenshot:
		a.screenshot()
	}
}

func (a *App) handleEnd(action hotkey.Action) {
	if action == hotkey.ActionHold && a.recorder.Recording() {
		a.finishSession()
	}
}

// handleKeystroke clears the paste-ready indicator: any real keypress after
// a paste means the user has moved on.
func (a *App) handleKeystroke() {
	a.pasteReady = false
}

func (a *App) beginSession() {
	if a.busy {
		a.log.Debugw("start ignored, transcription in flight")
		return
	}
	if err := permission.Require(a.perms, permission.Microphone); err != nil {
		a.log.Errorw("microphone not authorized", "error", err)
		a.notifier.Notify(statusForError(err))
		return
	}
	if err := a.recorder.Start(context.Background()); err != nil {
		a.log.Errorw("recording start failed", "error", err)
		a.notifier.Notify(statusForError(err))
		return
	}
	a.notifier.Notify("Recording started")
}

func (a *App) finishSession() {
	res, err := a.recorder.Stop()
	if err != nil {
		a.log.Errorw("recording stop failed", "error", err)
		a.notifier.Notify(statusForError(err))
		return
	}
	a.notifier.Notify("Transcribing...")
	a.busy = true
	go a.transcribe(res)
}

// transcribe runs on the background worker. Results come back through the
// dispatcher; the recorded file stays on disk until then.
func (a *App) transcribe(res capture.Result) {
	monoPath, err := wavconv.ConvertTo16kMonoPCM(res.Path)
	if err != nil {
		a.disp.Do(func() { a.deliver(res.Path, "", "", err) })
		return
	}
	text, err := a.engine.Transcribe(context.Background(), monoPath)
	a.disp.Do(func() { a.deliver(res.Path, monoPath, text, err) })
}

func (a *App) deliver(rawWav, monoWav, text string, err error) {
	a.busy = false
	defer handleCache(a.cfg, rawWav, monoWav, text, a.log)

	if err != nil {
		a.log.Errorw("transcription failed", "error", err)
		a.notifier.Notify(statusForError(err))
		return
	}
	if text == "" {
		a.notifier.Notify("No speech detected")
		return
	}
	a.lastText = text
	if err := a.paste(text); err != nil {
		a.log.Errorw("paste failed", "error", err)
		a.notifier.Notify("Paste failed")
		return
	}
	a.pasteReady = true
	a.notifier.Notify("Pasted")
}

func (a *App) pasteLast() {
	if a.lastText == "" {
		a.log.Debugw("paste requested but no transcription yet")
		return
	}
	if err := a.paste(a.lastText); err != nil {
		a.log.Errorw("paste failed", "error", err)
		a.notifier.Notify("Paste failed")
		return
	}
	a.pasteReady = true
}

func (a *App) screenshot() {
	if a.cfg.ScreenshotCmd == "" {
		a.log.Debugw("screenshot hotkey pressed but no command configured")
		return
	}
	cmd := a.cfg.ScreenshotCmd
	go func() {
		if err := a.runCmd(cmd); err != nil {
			a.log.Errorw("screenshot command failed", "cmd", cmd, "error", err)
			return
		}
		a.disp.Do(func() { a.notifier.Notify("Screenshot captured") })
	}()
}

func runShellCommand(command string) error {
	return exec.Command("/bin/sh", "-c", command).Run()
}

// RunRecordMode installs the global event tap and runs the dispatch loop
// until interrupted.
func RunRecordMode(cfg config.Config, log *zap.SugaredLogger) error {
	tempDir := config.TempDir(&cfg)
	cleanupOldTempFiles(tempDir, log)

	a, err := New(cfg, log)
	if err != nil {
		return err
	}
	if err := permission.Require(a.perms, permission.InputMonitoring); err != nil {
		return err
	}
	bindings, err := config.Bindings(&cfg)
	if err != nil {
		return err
	}

	machine := tap.NewMachine(bindings, a.Callbacks(), a.disp.Do, log)
	source := tap.NewHookSource()
	events, err := source.Start()
	if err != nil {
		return fmt.Errorf("install event tap: %w", err)
	}
	go func() {
		machine.Run(events)
		// hook stream ended; no further events can arrive
		machine.Disable()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Infow("shutting down")
		source.Stop()
		if a.recorder.Recording() {
			_ = a.recorder.Cancel()
		}
		a.disp.Stop()
	}()

	log.Infow("ready", "bindings", len(bindings), "engine", cfg.Engine)
	a.disp.Run()
	return nil
}

// RunFileMode transcribes an existing audio file and writes the result to
// a .txt file next to it (or to outputPath when set).
func RunFileMode(cfg config.Config, log *zap.SugaredLogger, inputPath, outputPath string) error {
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("file %q stat failed: %w", inputPath, err)
	}
	engine, err := NewEngine(cfg, log)
	if err != nil {
		return err
	}

	monoPath, err := wavconv.ConvertTo16kMonoPCM(inputPath)
	if err != nil {
		return err
	}
	defer os.Remove(monoPath)

	text, err := engine.Transcribe(context.Background(), monoPath)
	if err != nil {
		return err
	}
	if text == "" {
		return fmt.Errorf("no text recognized in %q", inputPath)
	}

	outPath := outputPath
	if outPath == "" {
		base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		outPath = filepath.Join(".", base+".txt")
	}
	if err := os.WriteFile(outPath, []byte(text), 0644); err != nil {
		return err
	}
	log.Infow("transcription written", "path", outPath)
	return nil
}
