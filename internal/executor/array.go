package executor

import (
	"evocore/internal/bounce"
	"evocore/internal/level"
)

// Array_Executor state values.
const (
	ArrayStateInitial byte = iota
	ArrayStateAwaitingStep
)

// ArrayExecutor threads Evaluator_Executor across every remaining step of
// l.Feed, writing each step's result straight into l.Out. Because every
// pushed child shares l.Out (rather than copying back through l.Spare),
// a vanishing step (ELIDE, COMMENT, a void-producing action) leaves a
// prior step's value in place untouched — the "stale OUT" mechanic of
// spec.md §4.6 falls out of sharing one cell across the whole block
// rather than needing special-case logic here.
func ArrayExecutor(l *level.Level) bounce.Bounce {
	if l.Feed.AtEnd() {
		if l.Voided() {
			return bounce.Void()
		}
		return bounce.Value(l.Out)
	}
	child := level.New(l.Feed, l.Out, EvaluatorExecutor)
	child.Specifier = l.Specifier
	l.PushChild(child)
	l.State = ArrayStateAwaitingStep
	return bounce.Continue()
}
