package api

import (
	"testing"

	"evocore/internal/bounce"
	"evocore/internal/cell"
	"evocore/internal/level"
)

func wantInt(t *testing.T, c *cell.Cell, want int64) {
	t.Helper()
	if c.Heart != cell.HeartInteger {
		t.Fatalf("result heart = %s, want integer", c.Heart)
	}
	got, _ := c.Payload.First.(int64)
	if got != want {
		t.Fatalf("result = %d, want %d", got, want)
	}
}

// RebValue over a single literal value just returns that value: there is
// no action invocation here since there is no lexer to produce one from
// "expr" text, but the variadic-splice plumbing (spec.md §6.1) is
// identical to what a real rebValue("...", arg) would use once fed a word
// cell instead of a bare literal.
func TestRebValueLiteral(t *testing.T) {
	result, err := RebValue(Integer(7))
	if err != nil {
		t.Fatalf("RebValue: %v", err)
	}
	wantInt(t, result, 7)
}

func TestRebDidTruthiness(t *testing.T) {
	ok, err := RebDid(Logic(true))
	if err != nil {
		t.Fatalf("RebDid: %v", err)
	}
	if !ok {
		t.Fatalf("RebDid(true) = false, want true")
	}

	ok, err = RebDid(Null())
	if err != nil {
		t.Fatalf("RebDid: %v", err)
	}
	if ok {
		t.Fatalf("RebDid(blank) = true, want false")
	}
}

func TestActionFromDispatchesHostFunction(t *testing.T) {
	called := false
	doubled, err := ActionFrom("double", []string{"n"}, func(l *level.Level) bounce.Bounce {
		called = true
		arg, err := l.Arg(1)
		if err != nil {
			return bounce.Thrown(err)
		}
		n, _ := arg.Payload.First.(int64)
		*l.Out = Integer(n * 2)
		return bounce.Value(l.Out)
	})
	if err != nil {
		t.Fatalf("ActionFrom: %v", err)
	}
	if doubled.Heart != cell.HeartAction {
		t.Fatalf("ActionFrom result heart = %s, want action", doubled.Heart)
	}
	if called {
		t.Fatalf("dispatcher ran before invocation")
	}

	result, err := RebValue(doubled, Integer(21))
	if err != nil {
		t.Fatalf("RebValue: %v", err)
	}
	if !called {
		t.Fatalf("dispatcher did not run when the action was invoked")
	}
	wantInt(t, result, 42)
}

// A Session that never suspends behaves exactly like RebValue: Resume
// reports suspended=false and returns the same result a direct RebValue
// call would.
func TestSessionResumeWithoutSuspend(t *testing.T) {
	s := Push(Integer(9))
	result, suspended, err := s.Resume()
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if suspended {
		t.Fatalf("Resume reported suspended on a program with no SUSPEND bounce")
	}
	wantInt(t, result, 9)
	if !s.Done() {
		t.Fatalf("Done() = false after a completed Resume")
	}
}

// A host-authored action that returns SuspendBounce() pauses the Session
// mid-program; a second Resume call picks the same Level chain back up
// and completes it (spec.md §6.1 push/suspend/resume).
func TestSessionSuspendAndResume(t *testing.T) {
	resumed := false
	suspendOnce, err := ActionFrom("suspend-once", nil, func(l *level.Level) bounce.Bounce {
		if !resumed {
			resumed = true
			return SuspendBounce()
		}
		*l.Out = Integer(99)
		return bounce.Value(l.Out)
	})
	if err != nil {
		t.Fatalf("ActionFrom: %v", err)
	}

	s := Push(suspendOnce)
	result, suspended, err := s.Resume()
	if err != nil {
		t.Fatalf("first Resume: %v", err)
	}
	if !suspended {
		t.Fatalf("first Resume reported suspended=false, want true")
	}
	if result != nil {
		t.Fatalf("first Resume returned a result %v, want nil while suspended", result)
	}
	if s.Done() {
		t.Fatalf("Done() = true after suspending, want false")
	}

	result, suspended, err = s.Resume()
	if err != nil {
		t.Fatalf("second Resume: %v", err)
	}
	if suspended {
		t.Fatalf("second Resume reported suspended=true, want the program to finish")
	}
	wantInt(t, result, 99)
	if !s.Done() {
		t.Fatalf("Done() = false after the program finished")
	}
}
