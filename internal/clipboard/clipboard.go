// Package clipboard types transcribed text into the focused application by
// way of the system clipboard and a synthesized paste keystroke.
package clipboard

import (
	"fmt"
	"runtime"
	"time"

	"github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"
)

const (
	settleDelay = 80 * time.Millisecond
	pasteDelay  = 120 * time.Millisecond
)

// WriteText places text on the system clipboard without pasting.
func WriteText(text string) error {
	return clipboard.WriteAll(text)
}

// PasteText puts text on the clipboard, sends the platform paste chord
// (Cmd+V on macOS, Ctrl+V elsewhere) and then restores the previous
// clipboard contents. The restore is best effort: another process writing
// the clipboard inside the paste window will have its write clobbered, and
// there is no change-count primitive here to detect that.
func PasteText(text string) error {
	orig, hadOrig := readCurrent()
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	time.Sleep(settleDelay)

	if err := sendPasteChord(); err != nil {
		return err
	}
	time.Sleep(pasteDelay)

	if hadOrig {
		_ = clipboard.WriteAll(orig)
	}
	return nil
}

func readCurrent() (string, bool) {
	orig, err := clipboard.ReadAll()
	if err != nil {
		return "", false
	}
	return orig, true
}

func sendPasteChord() error {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return fmt.Errorf("keyboard binding: %w", err)
	}
	if runtime.GOOS == "darwin" {
		kb.HasSuper(true)
	} else {
		kb.HasCTRL(true)
	}
	kb.SetKeys(keybd_event.VK_V)
	if err := kb.Launching(); err != nil {
		return fmt.Errorf("send paste keystroke: %w", err)
	}
	return nil
}
