package whisper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ItzR3NO/R3VIB3-MacOS/internal/logging"
)

type fakeRunner struct {
	output   []byte
	err      error
	artifact string // written to <base>.txt before returning, if non-empty

	gotBin  string
	gotArgs []string
}

func (r *fakeRunner) Run(ctx context.Context, bin string, args ...string) ([]byte, error) {
	r.gotBin = bin
	r.gotArgs = args
	if r.artifact != "" {
		base := ""
		for i := 0; i < len(args)-1; i++ {
			if args[i] == "-of" {
				base = args[i+1]
			}
		}
		if base != "" {
			if err := os.WriteFile(base+".txt", []byte(r.artifact), 0o644); err != nil {
				return nil, err
			}
		}
	}
	return r.output, r.err
}

func setup(t *testing.T, r Runner) (*Invoker, string) {
	t.Helper()
	dir := t.TempDir()
	bin := filepath.Join(dir, "whisper-cli")
	model := filepath.Join(dir, "model.bin")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(model, []byte("m"), 0o644); err != nil {
		t.Fatal(err)
	}
	audio := filepath.Join(dir, "take_16k.wav")
	if err := os.WriteFile(audio, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	return NewInvoker(bin, model, r, logging.Nop()), audio
}

func TestMissingBinary(t *testing.T) {
	iv := NewInvoker("/nonexistent/whisper-cli", "/nonexistent/model.bin", &fakeRunner{}, logging.Nop())
	_, err := iv.Transcribe(context.Background(), "a.wav")
	var mb *MissingBinaryError
	if !errors.As(err, &mb) {
		t.Fatalf("expected MissingBinaryError, got %v", err)
	}
}

func TestMissingModel(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "whisper-cli")
	if err := os.WriteFile(bin, []byte("x"), 0o755); err != nil {
		t.Fatal(err)
	}
	iv := NewInvoker(bin, filepath.Join(dir, "missing.bin"), &fakeRunner{}, logging.Nop())
	_, err := iv.Transcribe(context.Background(), "a.wav")
	var mm *MissingModelError
	if !errors.As(err, &mm) {
		t.Fatalf("expected MissingModelError, got %v", err)
	}
}

func TestProcessFailureCarriesOutput(t *testing.T) {
	r := &fakeRunner{output: []byte("ggml_init: cuda missing"), err: errors.New("exit status 1")}
	iv, audio := setup(t, r)
	_, err := iv.Transcribe(context.Background(), audio)
	var pe *ProcessError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProcessError, got %v", err)
	}
	if pe.Output != "ggml_init: cuda missing" {
		t.Fatalf("output = %q", pe.Output)
	}
}

func TestArtifactWinsOverStdout(t *testing.T) {
	r := &fakeRunner{output: []byte("stdout garbage"), artifact: "  hello world  "}
	iv, audio := setup(t, r)
	got, err := iv.Transcribe(context.Background(), audio)
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello world" {
		t.Fatalf("got %q, want %q", got, "hello world")
	}
}

func TestStdoutFallback(t *testing.T) {
	r := &fakeRunner{output: []byte("[00:00.00 --> 00:01.00] hello\nwhisper_init: ok\nmain: done\nHi there")}
	iv, audio := setup(t, r)
	got, err := iv.Transcribe(context.Background(), audio)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hi there" {
		t.Fatalf("got %q, want %q", got, "Hi there")
	}
}

func TestBlankArtifactFallsBack(t *testing.T) {
	r := &fakeRunner{output: []byte("actual words"), artifact: "   \n  "}
	iv, audio := setup(t, r)
	got, err := iv.Transcribe(context.Background(), audio)
	if err != nil {
		t.Fatal(err)
	}
	if got != "actual words" {
		t.Fatalf("got %q", got)
	}
}

func TestEmptyResult(t *testing.T) {
	r := &fakeRunner{output: []byte("whisper_full: processing\n\n[00:00.00 --> 00:01.00] \n")}
	iv, audio := setup(t, r)
	_, err := iv.Transcribe(context.Background(), audio)
	if !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}
}

func TestInvocationArguments(t *testing.T) {
	r := &fakeRunner{output: []byte("ok")}
	iv, audio := setup(t, r)
	if _, err := iv.Transcribe(context.Background(), audio); err != nil {
		t.Fatal(err)
	}
	base := audio[:len(audio)-len(".wav")]
	want := []string{"-m", iv.model, "-f", audio, "-otxt", "-of", base}
	if len(r.gotArgs) != len(want) {
		t.Fatalf("args = %v, want %v", r.gotArgs, want)
	}
	for i := range want {
		if r.gotArgs[i] != want[i] {
			t.Fatalf("arg %d = %q, want %q", i, r.gotArgs[i], want[i])
		}
	}
}

func TestParseStdoutJoinsContentLines(t *testing.T) {
	out := "whisper_model_load: loading\n[00:00.00 --> 00:02.00] one\nfirst part\n\nsystem_info: threads = 4\nsecond part\nmain: done\n"
	got := ParseStdout(out)
	if got != "first part second part" {
		t.Fatalf("got %q", got)
	}
}

func TestLocateBinary(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "whisper-cli")
	if err := os.WriteFile(bin, []byte("x"), 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := LocateBinary(bin)
	if err != nil || got != bin {
		t.Fatalf("LocateBinary = %q, %v", got, err)
	}
	_, err = LocateBinary(filepath.Join(dir, "nope"))
	var mb *MissingBinaryError
	if !errors.As(err, &mb) {
		t.Fatalf("expected MissingBinaryError, got %v", err)
	}
}
