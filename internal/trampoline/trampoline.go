// Package trampoline implements the evaluator's outer loop (spec.md §4.4,
// C8): repeatedly call the top Level's Executor and act on the Bounce it
// returns. No Go call stack frame corresponds to a pushed Level — Levels
// live on the heap, chained by Prior — so arbitrarily deep Rebol-style
// recursion (nested DO, nested nested IFs, a user function calling
// itself a thousand times) costs heap Levels, not host stack depth.
package trampoline

import (
	"evocore/internal/bounce"
	"evocore/internal/cell"
	"evocore/internal/executor"
	"evocore/internal/level"
	"evocore/internal/rterror"
)

// catchAllLabel is the CatchLabel an unnamed CATCH construct uses: it
// matches any thrown label, the way a plain CATCH (no /NAME refinement)
// catches any THROW in the Rebol family (spec.md §8 scenario 6 — the
// label is "foo" and still matches the unnamed catch).
const catchAllLabel = "*"

// Run drives top (and whatever Levels it pushes) to completion and
// returns the final OUT cell, or the error that aborted the run: an
// uncaught thrown value, an abrupt failure, or a level push/drop
// imbalance that would indicate an executor bug. Run is the synchronous
// convenience entry point used by code that never suspends; a host that
// wants to drive suspension points itself uses Machine (internal/api,
// internal/hostbridge).
func Run(top *level.Level) (*cell.Cell, error) {
	m := NewMachine(top)
	result, suspended, err := m.Resume()
	if err != nil {
		return nil, err
	}
	if suspended {
		return nil, rterror.New(rterror.TagStackImbalance, "suspend reached a synchronous Run (host bridge must drive suspended levels)")
	}
	return result, nil
}

// Machine is the resumable form of the trampoline loop (spec.md §4.4's
// "SUSPEND: return to host, preserve the chain" and §6.1's "push, pop,
// suspend, resume for hosts that wish to drive the Trampoline
// themselves"). Unlike Run, Machine.Resume returns to its caller on a
// SUSPEND bounce instead of failing, leaving the Level chain exactly as
// the suspending executor left it so a later Resume call continues from
// the same point.
type Machine struct {
	top            *level.Level
	pushed, dropped int
	finished       bool
}

// NewMachine wraps top for step-by-step driving. top must not yet have
// been run (pushed starts at 1, matching Run's own bookkeeping).
func NewMachine(top *level.Level) *Machine {
	return &Machine{top: top, pushed: 1}
}

// Finished reports whether a prior Resume call drove the chain to
// completion (or to an uncaught failure); calling Resume again after that
// is a caller bug.
func (m *Machine) Finished() bool { return m.finished }

// Resume drives the chain until it completes, fails, or suspends again.
// suspended reports which of those happened: when true, result and err
// are both zero and a later Resume call continues the same chain; when
// false, result/err are Run's usual final outcome.
func (m *Machine) Resume() (result *cell.Cell, suspended bool, err error) {
	top := m.top
	pushed, dropped := m.pushed, m.dropped

outer:
	for {
		b := top.Executor(top)

		switch b.Kind {
		case bounce.KindValue, bounce.KindVoid:
			if b.Kind == bounce.KindVoid {
				top.MarkVoidStale()
			}
			res := top.Out
			dropped++
			prior := top.Prior
			if prior == nil {
				return m.finish(res, pushed, dropped)
			}
			top = prior
			for top.Delegating {
				dropped++
				prior = top.Prior
				if prior == nil {
					return m.finish(res, pushed, dropped)
				}
				top = prior
			}
			continue outer

		case bounce.KindThrown:
			rerr, ok := b.Err.(*rterror.RuntimeError)
			if !ok || rerr.Category != rterror.CategoryThrown {
				m.finished = true
				return nil, false, b.Err
			}
			for cur := top; cur != nil; cur = cur.Prior {
				dropped++
				if cur.CatchLabel != "" && (cur.CatchLabel == catchAllLabel || cur.CatchLabel == rerr.ThrowLabel) {
					if v, ok := rerr.ThrowValue.(cell.Cell); ok {
						_ = cell.Copy(cur.Out, &v)
					}
					res := cur.Out
					prior := cur.Prior
					if prior == nil {
						return m.finish(res, pushed, dropped)
					}
					top = prior
					for top.Delegating {
						dropped++
						prior = top.Prior
						if prior == nil {
							return m.finish(res, pushed, dropped)
						}
						top = prior
					}
					continue outer
				}
			}
			m.finished = true
			return nil, false, rerr

		case bounce.KindRedoChecked:
			top.State = executor.ActionStateTypecheck
			continue outer

		case bounce.KindRedoUnchecked:
			top.State = executor.ActionStateDispatchOnly
			continue outer

		case bounce.KindContinue:
			child := top.Child
			if child == nil {
				m.finished = true
				return nil, false, rterror.New(rterror.TagStackImbalance, "executor returned Continue without pushing a child")
			}
			top.Child = nil
			pushed++
			top = child
			continue outer

		case bounce.KindDelegate:
			child := top.Child
			if child == nil {
				m.finished = true
				return nil, false, rterror.New(rterror.TagStackImbalance, "executor returned Delegate without pushing a child")
			}
			top.Child = nil
			top.Delegating = true
			pushed++
			top = child
			continue outer

		case bounce.KindSuspend:
			m.top = top
			m.pushed, m.dropped = pushed, dropped
			return nil, true, nil

		case bounce.KindUnhandled:
			m.finished = true
			return nil, false, b.Err

		default:
			m.finished = true
			return nil, false, rterror.New(rterror.TagStackImbalance, "unrecognized bounce kind")
		}
	}
}

func (m *Machine) finish(result *cell.Cell, pushed, dropped int) (*cell.Cell, bool, error) {
	m.finished = true
	if pushed != dropped {
		return nil, false, rterror.LevelImbalance(pushed, dropped)
	}
	return result, false, nil
}
