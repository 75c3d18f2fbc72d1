package pipeline

import (
	"fmt"
	"time"
)

// State is a step of a pipeline run. Runs move strictly forward and may skip states.
type State string

const (
	StateQualityCheck State = "quality-check"
	StateEnhance      State = "enhance"
	StateRecognize    State = "recognize"
	StateMRZ          State = "mrz-attempt"
	StateRegex        State = "regex-fallback"
	StateValidate     State = "validate"
	StateDone         State = "done"
)

var stateOrder = map[State]int{
	StateQualityCheck: 0,
	StateEnhance:      1,
	StateRecognize:    2,
	StateMRZ:          3,
	StateRegex:        4,
	StateValidate:     5,
	StateDone:         6,
}

// Session is the explicit state of one run. It is created per call and handed back in
// the diagnostics; the orchestrator keeps nothing between calls.
type Session struct {
	RequestID string
	State     State
	Trace     []State

	started    time.Time
	stageStart time.Time
}

func newSession(requestID string) *Session {
	now := time.Now()
	return &Session{RequestID: requestID, started: now, stageStart: now}
}

// Advance moves to next and returns how long the previous state took.
func (s *Session) Advance(next State) (time.Duration, error) {
	to, ok := stateOrder[next]
	if !ok {
		return 0, fmt.Errorf("unknown pipeline state %q", next)
	}
	if s.State != "" && to <= stateOrder[s.State] {
		return 0, fmt.Errorf("pipeline cannot move from %s to %s", s.State, next)
	}
	now := time.Now()
	elapsed := now.Sub(s.stageStart)
	s.State = next
	s.Trace = append(s.Trace, next)
	s.stageStart = now
	return elapsed, nil
}

// Done reports whether the run reached its terminal state.
func (s *Session) Done() bool {
	return s.State == StateDone
}

// Elapsed is the time since the session started.
func (s *Session) Elapsed() time.Duration {
	return time.Since(s.started)
}

func (s *Session) trace() []string {
	out := make([]string, len(s.Trace))
	for i, st := range s.Trace {
		out[i] = string(st)
	}
	return out
}
