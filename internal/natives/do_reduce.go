package natives

import (
	"evocore/internal/action"
	"evocore/internal/bounce"
	"evocore/internal/cell"
	"evocore/internal/ctx"
	"evocore/internal/executor"
	"evocore/internal/feed"
	"evocore/internal/level"
	"evocore/internal/series"
)

// NewDo builds the DO action: runs a BLOCK! body as a nested program,
// its result becoming DO's own result (spec.md §8 scenario 5 — a RETURN
// inside the block throws past DO straight to the enclosing function's
// Level; DO itself is just a pass-through body runner and never catches
// it).
func NewDo() *action.Action {
	exemplar, _ := ctx.New(cell.HeartObject, symKeys("body"), nil)
	params := []*action.Typeset{
		(&action.Typeset{Name: "body", Class: action.ParamHardQuoted}).Allow(cell.HeartBlock),
	}
	dispatcher := func(l *level.Level) bounce.Bounce {
		body, _ := l.Arg(1)
		arr, _ := body.Payload.First.(*series.Series)
		child := level.New(feed.NewArrayFeed(arr), l.Out, executor.ArrayExecutor)
		child.Specifier = l.Specifier
		l.PushChild(child)
		return bounce.Delegate()
	}
	return action.New(exemplar, params, []bool{false}, dispatcher, "do")
}

// NewReduce builds the REDUCE action: evaluates every step of a BLOCK!
// body, collecting each non-vanishing result into a new array (spec.md
// §8 scenario 3). It resumes itself across one sub-Level per body step,
// using InnerFeed/Collected as its private iteration state.
func NewReduce() *action.Action {
	exemplar, _ := ctx.New(cell.HeartObject, symKeys("body"), nil)
	params := []*action.Typeset{
		(&action.Typeset{Name: "body", Class: action.ParamHardQuoted}).Allow(cell.HeartBlock),
	}
	dispatcher := func(l *level.Level) bounce.Bounce {
		if l.InnerFeed == nil {
			body, _ := l.Arg(1)
			arr, _ := body.Payload.First.(*series.Series)
			l.InnerFeed = feed.NewArrayFeed(arr)
			l.Collected = series.NewArray(arr.Len())
		} else if l.Spare.Flags&(cell.FlagStale|cell.FlagVoided) == 0 {
			if err := l.Collected.Append(l.Spare); err != nil {
				return bounce.Thrown(err)
			}
		}
		if l.InnerFeed.AtEnd() {
			v := cell.Cell{Heart: cell.HeartBlock, Quote: cell.QuotePlain, Payload: cell.Payload{First: l.Collected}}
			if err := cell.Copy(l.Out, &v); err != nil {
				return bounce.Thrown(err)
			}
			return bounce.Value(l.Out)
		}
		child := level.New(l.InnerFeed, &l.Spare, executor.EvaluatorExecutor)
		child.Specifier = l.Specifier
		l.PushChild(child)
		return bounce.Continue()
	}
	return action.New(exemplar, params, []bool{false}, dispatcher, "reduce")
}

// NewAll builds the ALL action: evaluates successive steps of a BLOCK!
// body, short-circuiting to the first falsy result and otherwise
// returning the last one, while a vanishing step (ELIDE/COMMENT) leaves
// the running value untouched (spec.md §8 scenario 4).
func NewAll() *action.Action {
	exemplar, _ := ctx.New(cell.HeartObject, symKeys("body"), nil)
	params := []*action.Typeset{
		(&action.Typeset{Name: "body", Class: action.ParamHardQuoted}).Allow(cell.HeartBlock),
	}
	dispatcher := func(l *level.Level) bounce.Bounce {
		if l.InnerFeed == nil {
			body, _ := l.Arg(1)
			arr, _ := body.Payload.First.(*series.Series)
			l.InnerFeed = feed.NewArrayFeed(arr)
		} else if l.Spare.Flags&(cell.FlagStale|cell.FlagVoided) == 0 {
			if !truthy(&l.Spare) {
				if err := cell.Copy(l.Out, &l.Spare); err != nil {
					return bounce.Thrown(err)
				}
				return bounce.Value(l.Out)
			}
			if err := cell.Copy(l.Out, &l.Spare); err != nil {
				return bounce.Thrown(err)
			}
		}
		if l.InnerFeed.AtEnd() {
			return bounce.Value(l.Out)
		}
		child := level.New(l.InnerFeed, &l.Spare, executor.EvaluatorExecutor)
		child.Specifier = l.Specifier
		l.PushChild(child)
		return bounce.Continue()
	}
	return action.New(exemplar, params, []bool{false}, dispatcher, "all")
}
