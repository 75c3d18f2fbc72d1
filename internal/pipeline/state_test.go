package pipeline

import (
	"reflect"
	"testing"
)

func TestSession_Advance(t *testing.T) {
	s := newSession("req")
	for _, st := range []State{StateQualityCheck, StateEnhance, StateRecognize, StateValidate, StateDone} {
		if _, err := s.Advance(st); err != nil {
			t.Fatalf("Expected advance to %s to succeed, got %v", st, err)
		}
	}
	if !s.Done() {
		t.Error("Expected session to be done")
	}
	want := []string{"quality-check", "enhance", "recognize", "validate", "done"}
	if !reflect.DeepEqual(s.trace(), want) {
		t.Errorf("Expected trace %v, got %v", want, s.trace())
	}
}

func TestSession_RejectsBackwardAndUnknown(t *testing.T) {
	tests := []struct {
		name string
		from State
		to   State
	}{
		{"backward", StateRecognize, StateEnhance},
		{"repeat", StateMRZ, StateMRZ},
		{"after done", StateDone, StateValidate},
		{"unknown", StateQualityCheck, State("retry")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession("req")
			if _, err := s.Advance(tt.from); err != nil {
				t.Fatalf("Expected first advance to succeed, got %v", err)
			}
			if _, err := s.Advance(tt.to); err == nil {
				t.Errorf("Expected move from %s to %s to fail", tt.from, tt.to)
			}
			if s.State != tt.from {
				t.Errorf("Expected state to stay %s, got %s", tt.from, s.State)
			}
		})
	}
}
