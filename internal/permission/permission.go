// Package permission models the OS authorization states the app depends
// on: microphone access for capture and input-monitoring trust for the
// global event tap.
package permission

import "fmt"

// Kind identifies one OS authorization.
type Kind int

const (
	Microphone Kind = iota
	InputMonitoring
)

func (k Kind) String() string {
	switch k {
	case Microphone:
		return "microphone"
	case InputMonitoring:
		return "input monitoring"
	default:
		return fmt.Sprintf("permission(%d)", int(k))
	}
}

// DeniedError reports a denied authorization. The app surfaces it and
// stops; it never attempts to work around a denial.
type DeniedError struct {
	Kind Kind
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%s permission denied", e.Kind)
}

// Checker reports current authorization state. Implementations must not
// block on user interaction.
type Checker interface {
	Granted(k Kind) bool
}

// Require returns a DeniedError if the authorization is not granted.
func Require(c Checker, k Kind) error {
	if !c.Granted(k) {
		return &DeniedError{Kind: k}
	}
	return nil
}

// EnvChecker assumes access is granted unless the OS blocks it at use
// time. The hook install and device open paths report an OS denial as an
// ordinary error, so there is no separate probe to run up front here.
type EnvChecker struct{}

func (EnvChecker) Granted(Kind) bool { return true }

// Static is a fixed-answer checker for tests.
type Static struct {
	Denied map[Kind]bool
}

func (s Static) Granted(k Kind) bool { return !s.Denied[k] }
