package natives

import (
	"evocore/internal/action"
	"evocore/internal/bounce"
	"evocore/internal/cell"
	"evocore/internal/ctx"
	"evocore/internal/executor"
	"evocore/internal/feed"
	"evocore/internal/level"
	"evocore/internal/rterror"
	"evocore/internal/series"
)

// catchAllLabel mirrors internal/trampoline's sentinel: a plain CATCH
// (no /NAME) declares itself a catch target for any thrown label.
const catchAllLabel = "*"

// NewCatch builds the CATCH action: runs a BLOCK! body as a catch
// target for any THROW reached while it (or anything it calls) is on
// the Level chain (spec.md §8 scenario 6).
func NewCatch() *action.Action {
	exemplar, _ := ctx.New(cell.HeartObject, symKeys("body"), nil)
	params := []*action.Typeset{
		(&action.Typeset{Name: "body", Class: action.ParamHardQuoted}).Allow(cell.HeartBlock),
	}
	dispatcher := func(l *level.Level) bounce.Bounce {
		l.CatchLabel = catchAllLabel
		body, _ := l.Arg(1)
		arr, _ := body.Payload.First.(*series.Series)
		child := level.New(feed.NewArrayFeed(arr), l.Out, executor.ArrayExecutor)
		child.Specifier = l.Specifier
		l.PushChild(child)
		return bounce.Delegate()
	}
	return action.New(exemplar, params, []bool{false}, dispatcher, "catch")
}

// NewThrow builds the THROW action: `throw name value` is a non-local
// exit matched by a CATCH whose label is either catchAllLabel or name
// itself. name is hard-quoted (taken as the bare WORD! cell, never
// resolved) so it behaves as a literal tag rather than a bound variable.
func NewThrow() *action.Action {
	exemplar, _ := ctx.New(cell.HeartObject, symKeys("name", "value"), nil)
	params := []*action.Typeset{
		(&action.Typeset{Name: "name", Class: action.ParamHardQuoted}).Allow(cell.HeartWord),
		{Name: "value", Class: action.ParamNormal, Hearts: allTypeset()},
	}
	dispatcher := func(l *level.Level) bounce.Bounce {
		nameCell, _ := l.Arg(1)
		sym, ok := nameCell.Payload.First.(ctx.Symbol)
		if !ok {
			return bounce.Thrown(rterror.New(rterror.TagArgTypeMismatch, "throw name must be a word"))
		}
		val, _ := l.Arg(2)
		return bounce.Thrown(rterror.Thrown(string(sym), *val))
	}
	return action.New(exemplar, params, []bool{false, false}, dispatcher, "throw")
}
