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

// runBranch pushes the Level appropriate to branch's heart, delegating
// the calling action Level's result to it (spec.md §4.5 branch running:
// a BLOCK! runs as a body, a GROUP! runs through Group_Branch_Executor,
// an ACTION! is invoked with no arguments, anything else is a literal
// branch value).
func runBranch(l *level.Level, branch *cell.Cell) bounce.Bounce {
	switch branch.Heart {
	case cell.HeartBlock:
		arr, _ := branch.Payload.First.(*series.Series)
		child := level.New(feed.NewArrayFeed(arr), l.Out, executor.ArrayExecutor)
		child.Specifier = l.Specifier
		l.PushChild(child)
		return bounce.Delegate()
	case cell.HeartGroup:
		arr, _ := branch.Payload.First.(*series.Series)
		child := level.New(feed.NewArrayFeed(nil), l.Out, executor.GroupBranchExecutor)
		child.Specifier = l.Specifier
		child.GroupSource = arr
		l.PushChild(child)
		return bounce.Delegate()
	case cell.HeartAction:
		act, _ := branch.Payload.First.(*action.Action)
		frame, err := act.BuildFrame()
		if err != nil {
			return bounce.Thrown(err)
		}
		child := level.NewActionLevel(feed.NewArrayFeed(nil), l.Out, frame, executor.ActionExecutor)
		child.ActionRef = act
		l.PushChild(child)
		return bounce.Delegate()
	default:
		if err := cell.Copy(l.Out, branch); err != nil {
			return bounce.Thrown(err)
		}
		return bounce.Value(l.Out)
	}
}

func branchTypeset(t *action.Typeset) *action.Typeset {
	return t.Allow(cell.HeartBlock).Allow(cell.HeartAction).Allow(cell.HeartGroup)
}

// NewIf builds the IF action: `if condition branch`. A falsy condition
// produces the heavy-null isotope ELSE inspects (spec.md §8 scenarios
// 1-2).
func NewIf() *action.Action {
	exemplar, _ := ctx.New(cell.HeartObject, symKeys("condition", "branch"), nil)
	params := []*action.Typeset{
		{Name: "condition", Class: action.ParamNormal, Hearts: allTypeset()},
		branchTypeset(&action.Typeset{Name: "branch", Class: action.ParamHardQuoted}),
	}
	dispatcher := func(l *level.Level) bounce.Bounce {
		cond, _ := l.Arg(1)
		if !truthy(cond) {
			v := nullIsotope()
			if err := cell.Copy(l.Out, &v); err != nil {
				return bounce.Thrown(err)
			}
			return bounce.Value(l.Out)
		}
		branch, _ := l.Arg(2)
		return runBranch(l, branch)
	}
	return action.New(exemplar, params, []bool{false, false}, dispatcher, "if")
}

// NewElse builds the infix ELSE action: its left argument is meta-lifted
// so it can distinguish a genuine value from IF's heavy-null isotope
// without that isotope ever reaching an array (spec.md §8 scenario 2).
func NewElse() *action.Action {
	exemplar, _ := ctx.New(cell.HeartObject, symKeys("left", "branch"), nil)
	params := []*action.Typeset{
		{Name: "left", Class: action.ParamMeta, Hearts: allTypeset()},
		branchTypeset(&action.Typeset{Name: "branch", Class: action.ParamHardQuoted}),
	}
	dispatcher := func(l *level.Level) bounce.Bounce {
		left, _ := l.Arg(1)
		if isQuasiNull(left) {
			branch, _ := l.Arg(2)
			return runBranch(l, branch)
		}
		restored := *left
		if restored.Quote.IsQuasi() {
			restored.Quote = cell.QuoteIsotope
		} else {
			restored.Quote = restored.Quote.Unquoted()
		}
		if err := cell.Copy(l.Out, &restored); err != nil {
			return bounce.Thrown(err)
		}
		return bounce.Value(l.Out)
	}
	a := action.New(exemplar, params, []bool{false, false}, dispatcher, "else")
	a.Enfix = true
	return a
}
