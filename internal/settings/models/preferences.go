// Package models defines the account automation preferences.
//
// Each automation dimension is a closed sum type: a sealed interface whose
// variants are the only types implementing its unexported marker method. A
// variant shared by several dimensions (Timer, Off) implements each of their
// markers, while Count and On only implement the dimensions that have them, so
// an AutoPull value can never hold a Count.
package models

// CommandStyle selects how client commands are phrased.
type CommandStyle int

const (
	CommandStyleUnix CommandStyle = iota
	CommandStylePlainEnglish
)

func (s CommandStyle) String() string {
	switch s {
	case CommandStylePlainEnglish:
		return "plain-english"
	default:
		return "unix"
	}
}

// CommitBehaviour is one of Timer, Count or Off.
type CommitBehaviour interface {
	commitBehaviour()
}

// PullBehaviour is one of Timer, On or Off.
type PullBehaviour interface {
	pullBehaviour()
}

// PushBehaviour is one of Timer, Count or Off.
type PushBehaviour interface {
	pushBehaviour()
}

// Timer fires every IntervalMillis milliseconds. A zero interval means the
// caller did not supply one.
type Timer struct {
	IntervalMillis uint64
}

// Count fires every N commits. Zero means the caller did not supply a count.
type Count struct {
	N uint32
}

// On pulls whenever the client is online.
type On struct{}

// Off disables the automation.
type Off struct{}

func (Timer) commitBehaviour() {}
func (Timer) pullBehaviour()   {}
func (Timer) pushBehaviour()   {}

func (Count) commitBehaviour() {}
func (Count) pushBehaviour()   {}

func (On) pullBehaviour() {}

func (Off) commitBehaviour() {}
func (Off) pullBehaviour()   {}
func (Off) pushBehaviour()   {}

// Preferences is the per-account automation configuration. A nil behaviour
// means Off. Encoding and decoding yield Off{} in its place, so only
// normalized values round-trip unchanged.
type Preferences struct {
	CommandStyle CommandStyle
	AutoCommit   CommitBehaviour
	AutoPull     PullBehaviour
	AutoPush     PushBehaviour
}

// Default returns the preferences every new account starts with.
func Default() Preferences {
	return Preferences{
		CommandStyle: CommandStyleUnix,
		AutoCommit:   Off{},
		AutoPull:     Off{},
		AutoPush:     Off{},
	}
}

// Normalize replaces nil behaviours with Off so callers can switch on the
// variants without a nil case.
func (p Preferences) Normalize() Preferences {
	if p.AutoCommit == nil {
		p.AutoCommit = Off{}
	}
	if p.AutoPull == nil {
		p.AutoPull = Off{}
	}
	if p.AutoPush == nil {
		p.AutoPush = Off{}
	}
	return p
}
