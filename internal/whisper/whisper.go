// Package whisper drives the whisper-cli transcription engine as a
// subprocess.
package whisper

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// DefaultBinaryName is looked up on PATH when no explicit path is configured.
const DefaultBinaryName = "whisper-cli"

// Runner is the seam over subprocess execution. Implementations return the
// combined stdout/stderr of the finished process.
type Runner interface {
	Run(ctx context.Context, bin string, args ...string) ([]byte, error)
}

// ExecRunner runs the real engine binary.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, bin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	return cmd.CombinedOutput()
}

// LocateBinary resolves the engine executable. An explicit path wins;
// otherwise PATH is searched for the default name.
func LocateBinary(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err != nil {
			return "", &MissingBinaryError{Path: configured}
		}
		return configured, nil
	}
	path, err := exec.LookPath(DefaultBinaryName)
	if err != nil {
		return "", &MissingBinaryError{Path: DefaultBinaryName}
	}
	return path, nil
}

// Invoker transcribes audio files through the engine subprocess.
type Invoker struct {
	bin   string
	model string
	run   Runner
	log   *zap.SugaredLogger
}

func NewInvoker(bin, model string, run Runner, log *zap.SugaredLogger) *Invoker {
	return &Invoker{bin: bin, model: model, run: run, log: log}
}

// Transcribe runs the engine against audioPath and returns the recognized
// text. The audio file is not touched beyond reading; callers delete it
// once the result has been delivered.
func (iv *Invoker) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if _, err := os.Stat(iv.bin); err != nil {
		return "", &MissingBinaryError{Path: iv.bin}
	}
	if _, err := os.Stat(iv.model); err != nil {
		return "", &MissingModelError{Path: iv.model}
	}
	iv.ensureExecutable()

	outBase := strings.TrimSuffix(audioPath, ".wav")
	args := []string{"-m", iv.model, "-f", audioPath, "-otxt", "-of", outBase}
	iv.log.Debugw("invoking engine", "bin", iv.bin, "args", args)

	output, err := iv.run.Run(ctx, iv.bin, args...)
	if err != nil {
		return "", &ProcessError{Err: err, Output: string(output)}
	}

	artifact := outBase + ".txt"
	if data, err := os.ReadFile(artifact); err == nil {
		if text := strings.TrimSpace(string(data)); text != "" {
			_ = os.Remove(artifact)
			return text, nil
		}
	}

	text := ParseStdout(string(output))
	if text == "" {
		return "", ErrEmptyResult
	}
	return text, nil
}

// ensureExecutable adds execute bits if they are missing. A chmod failure
// is logged and ignored; the subsequent exec will surface a real problem.
func (iv *Invoker) ensureExecutable() {
	info, err := os.Stat(iv.bin)
	if err != nil {
		return
	}
	mode := info.Mode()
	if mode&0o111 != 0 {
		return
	}
	if err := os.Chmod(iv.bin, mode|0o755); err != nil {
		iv.log.Warnw("could not make engine binary executable", "bin", iv.bin, "error", err)
	}
}

// internal engine chatter that the fallback parse must never treat as
// transcription content
var noisePrefixes = []string{
	"whisper_",
	"ggml_",
	"main:",
	"system_info:",
}

// ParseStdout extracts transcription text from raw engine stdout, used when
// the text artifact is absent or blank. Timestamped segment lines and engine
// log lines are dropped; remaining lines are joined with single spaces.
func ParseStdout(out string) string {
	var kept []string
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "[") {
			continue
		}
		if hasNoisePrefix(trimmed) {
			continue
		}
		kept = append(kept, trimmed)
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}

func hasNoisePrefix(line string) bool {
	for _, p := range noisePrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
