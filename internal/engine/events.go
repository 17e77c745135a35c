package engine

import "time"

// State tracks one rule's progress through a run.
type State uint8

const (
	// StateNotStarted is the state before any module is visited.
	StateNotStarted State = iota
	// StateVisitingModule is the per-module visiting phase.
	StateVisitingModule
	// StateFolding is the contribution-folding phase.
	StateFolding
	// StateFinalEvaluation is the final project evaluation phase.
	StateFinalEvaluation
	// StateDone is the terminal state.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateVisitingModule:
		return "visiting"
	case StateFolding:
		return "folding"
	case StateFinalEvaluation:
		return "final-evaluation"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// Event reports progress for a rule (and for one module when Module is
// set). Cached marks a module served from the incremental cache,
// Skipped a module the rule's target filter excluded.
type Event struct {
	Rule    string
	Module  string
	State   State
	Cached  bool
	Skipped bool
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe
// for concurrent use: module events are published from worker
// goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) OnEvent(Event) {}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}
