// Package notify shows desktop notifications for recording and
// transcription status.
package notify

import "github.com/gen2brain/beeep"

// Notifier posts user-visible status messages. A disabled notifier is a
// valid zero value that drops everything.
type Notifier struct {
	enabled bool
	title   string
}

func New(enabled bool, title string) *Notifier {
	return &Notifier{enabled: enabled, title: title}
}

// Notify shows a desktop notification. Failures are ignored; status
// messages are advisory only.
func (n *Notifier) Notify(message string) {
	if n == nil || !n.enabled {
		return
	}
	_ = beeep.Notify(n.title, message, "")
}
