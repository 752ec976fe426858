package pipeline

import (
	"errors"

	"github.com/backmassage/clipnamer/internal/remux"
)

// ErrPanic wraps a panic recovered inside a task.
var ErrPanic = errors.New("task panicked")

// Kind is the host event that started a task.
type Kind int

const (
	KindRecording Kind = iota
	KindReplay
)

func (k Kind) String() string {
	if k == KindReplay {
		return "replay"
	}
	return "recording"
}

// Status is how a task ended.
type Status int

const (
	StatusRenamed   Status = iota
	StatusUnchanged        // empty fragment; file kept its name
	StatusSkipped          // replay renaming disabled
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusRenamed:
		return "renamed"
	case StatusUnchanged:
		return "unchanged"
	case StatusSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Outcome describes one finished task.
type Outcome struct {
	TaskID string
	Kind   Kind
	// Source is the path the host reported.
	Source string
	// Path is where the recording ended up.
	Path     string
	Fragment string
	Status   Status
	Remux    remux.Result
	Err      error
}
