// Package executor implements the four Level-advancing functions spec.md
// §4.5 (C7) names: Evaluator_Executor steps one expression out of a feed;
// Action_Executor runs an action's argument-fulfillment/typecheck/dispatch
// state machine; Array_Executor threads Evaluator_Executor across a whole
// block body, preserving stale OUT between steps; Group_Branch_Executor
// implements the two-phase "evaluate a GROUP! to get a branch, then run
// that branch" pattern IF/CASE/etc. share.
//
// Each function is a level.ExecutorFunc: read l.State (and whatever
// executor-private scratch fields it left on l), do one unit of work, and
// return a bounce.Bounce telling the trampoline what to do next. None of
// them loop internally past a single Level push — looping happens by the
// trampoline re-entering the same function after a child Level drops,
// exactly as spec.md §4.4 describes.
package executor

import (
	"evocore/internal/action"
	"evocore/internal/bind"
	"evocore/internal/bounce"
	"evocore/internal/cell"
	"evocore/internal/ctx"
	"evocore/internal/feed"
	"evocore/internal/level"
	"evocore/internal/rterror"
	"evocore/internal/series"
)

// Evaluator_Executor state values.
const (
	EvalStateInitial byte = iota
	EvalStateAwaitingChild
)

// EvaluatorExecutor steps exactly one expression out of l.Feed into l.Out.
func EvaluatorExecutor(l *level.Level) bounce.Bounce {
	switch l.State {
	case EvalStateInitial:
		return evalInitial(l)
	case EvalStateAwaitingChild:
		return evalResume(l)
	default:
		return bounce.Thrown(rterror.New(rterror.TagStackImbalance, "evaluator level in unknown state"))
	}
}

func evalInitial(l *level.Level) bounce.Bounce {
	if l.Feed.AtEnd() {
		l.MarkVoidStale()
		return bounce.Void()
	}
	v, err := l.Feed.ValueAndFetch()
	if err != nil {
		return bounce.Thrown(err)
	}

	switch v.Heart {
	case cell.HeartWord:
		return evalWord(l, v)
	case cell.HeartGetWord:
		return evalGetWord(l, v)
	case cell.HeartSetWord:
		return evalSetWord(l, v)
	case cell.HeartGroup:
		arr, _ := v.Payload.First.(*series.Series)
		child := level.New(feed.NewArrayFeed(arr), &l.Spare, ArrayExecutor)
		child.Specifier = l.Specifier
		l.PushChild(child)
		l.State = EvalStateAwaitingChild
		l.PendingWord = nil
		l.ChildWroteOut = false
		return bounce.Continue()
	case cell.HeartAction:
		a, _ := v.Payload.First.(*action.Action)
		return beginAction(l, a, a.Label)
	default:
		if err := cell.Copy(l.Out, v); err != nil {
			return bounce.Thrown(err)
		}
		l.ClearStale()
		return finishStep(l)
	}
}

func evalWord(l *level.Level, word *cell.Cell) bounce.Bounce {
	sym, _ := word.Payload.First.(ctx.Symbol)
	resolved, err := bind.Resolve(word, sym, l.Specifier)
	if err != nil {
		return bounce.Thrown(err)
	}
	if resolved.Heart == cell.HeartAction {
		a, _ := resolved.Payload.First.(*action.Action)
		return beginAction(l, a, string(sym))
	}
	if err := cell.Copy(l.Out, resolved); err != nil {
		return bounce.Thrown(err)
	}
	l.ClearStale()
	return finishStep(l)
}

func evalGetWord(l *level.Level, word *cell.Cell) bounce.Bounce {
	sym, _ := word.Payload.First.(ctx.Symbol)
	resolved, err := bind.Resolve(word, sym, l.Specifier)
	if err != nil {
		return bounce.Thrown(err)
	}
	if err := cell.Copy(l.Out, resolved); err != nil {
		return bounce.Thrown(err)
	}
	l.ClearStale()
	return finishStep(l)
}

func evalSetWord(l *level.Level, word *cell.Cell) bounce.Bounce {
	child := level.New(l.Feed, &l.Spare, EvaluatorExecutor)
	child.Specifier = l.Specifier
	l.PushChild(child)
	l.State = EvalStateAwaitingChild
	l.PendingWord = word
	l.ChildWroteOut = false
	return bounce.Continue()
}

func evalResume(l *level.Level) bounce.Bounce {
	if l.PendingWord != nil {
		sym, _ := l.PendingWord.Payload.First.(ctx.Symbol)
		target, err := bind.Resolve(l.PendingWord, sym, l.Specifier)
		if err != nil {
			return bounce.Thrown(err)
		}
		if err := cell.Copy(target, &l.Spare); err != nil {
			return bounce.Thrown(err)
		}
		if err := cell.Copy(l.Out, &l.Spare); err != nil {
			return bounce.Thrown(err)
		}
		l.PendingWord = nil
		l.ClearStale()
		return finishStep(l)
	}
	if !l.ChildWroteOut {
		// A vanishing sub-step (ELIDE/COMMENT/a void-producing action
		// inside a GROUP!) marks l.Spare stale+voided rather than writing
		// a fresh value; Copy's CopyMask deliberately does not carry those
		// bits, so they must be read here before the copy, not after.
		if l.Spare.Flags&(cell.FlagStale|cell.FlagVoided) != 0 {
			l.MarkVoidStale()
			return bounce.Void()
		}
		if err := cell.Copy(l.Out, &l.Spare); err != nil {
			return bounce.Thrown(err)
		}
	}
	return finishStep(l)
}

// finishStep is reached once l.Out holds this step's result (or its
// stale/voided carry-over). A voided step reports Void immediately — an
// enfix word following a vanished step has no left operand to bind to.
// Otherwise it peeks one cell ahead for an enfix binding before reporting
// the step done, implementing the infix-chain behavior of spec.md §4.3
// without a dedicated lookahead Level.
func finishStep(l *level.Level) bounce.Bounce {
	if l.Voided() {
		return bounce.Void()
	}
	if b, did := maybeEnfix(l); did {
		return b
	}
	return bounce.Value(l.Out)
}

func maybeEnfix(l *level.Level) (bounce.Bounce, bool) {
	peeked, ok := l.Feed.Peek(0)
	if !ok || peeked.Heart != cell.HeartWord {
		return bounce.Bounce{}, false
	}
	sym, _ := peeked.Payload.First.(ctx.Symbol)
	resolved, err := bind.Resolve(peeked, sym, l.Specifier)
	if err != nil || resolved.Heart != cell.HeartAction {
		return bounce.Bounce{}, false
	}
	a, _ := resolved.Payload.First.(*action.Action)
	if a == nil || !a.Enfix {
		return bounce.Bounce{}, false
	}
	_ = l.Feed.Fetch()
	return beginAction(l, a, string(sym)), true
}

// beginAction pushes the action Level that runs a, writing its result
// directly into l.Out (spec.md §4.3/§4.5: the caller's OUT *is* the
// action's OUT, no intermediate copy).
func beginAction(l *level.Level, a *action.Action, label string) bounce.Bounce {
	frame, err := a.BuildFrame()
	if err != nil {
		return bounce.Thrown(err)
	}
	child := level.NewActionLevel(l.Feed, l.Out, frame, ActionExecutor)
	child.ActionRef = a
	child.SetLabel(label)
	if a.Enfix {
		left := *l.Out
		child.EnfixLeft = &left
		child.Flags |= level.FlagEnfix
		l.Out.Reset()
	}
	l.PushChild(child)
	l.State = EvalStateAwaitingChild
	l.PendingWord = nil
	l.ChildWroteOut = true
	return bounce.Continue()
}
