package executor

import (
	"evocore/internal/action"
	"evocore/internal/bounce"
	"evocore/internal/cell"
	"evocore/internal/feed"
	"evocore/internal/level"
	"evocore/internal/rterror"
	"evocore/internal/series"
)

// Group_Branch_Executor state values (spec.md §4.5): a branch that is
// itself a GROUP! (e.g. IF condition :(compute-branch) [...]) is first
// reduced to an ordinary branch value, then run as one.
const (
	GroupBranchStateEvalGroup byte = iota
	GroupBranchStateRunBranch
)

// GroupBranchExecutor implements the two-phase group-as-branch pattern.
// Callers construct the Level directly: level.New(feed, out,
// GroupBranchExecutor), then set GroupSource and Specifier before pushing
// it (see internal/natives for IF/CASE-style callers).
func GroupBranchExecutor(l *level.Level) bounce.Bounce {
	switch l.State {
	case GroupBranchStateEvalGroup:
		if l.GroupSource == nil {
			return bounce.Thrown(rterror.New(rterror.TagStackImbalance, "group-branch level has no source"))
		}
		child := level.New(feed.NewArrayFeed(l.GroupSource), &l.Spare, ArrayExecutor)
		child.Specifier = l.Specifier
		l.PushChild(child)
		l.State = GroupBranchStateRunBranch
		return bounce.Continue()

	case GroupBranchStateRunBranch:
		branch := l.Spare
		switch branch.Heart {
		case cell.HeartBlock:
			arr, _ := branch.Payload.First.(*series.Series)
			child := level.New(feed.NewArrayFeed(arr), l.Out, ArrayExecutor)
			child.Specifier = l.Specifier
			l.PushChild(child)
			return bounce.Delegate()
		case cell.HeartAction:
			a, _ := branch.Payload.First.(*action.Action)
			frame, err := a.BuildFrame()
			if err != nil {
				return bounce.Thrown(err)
			}
			child := level.NewActionLevel(l.Feed, l.Out, frame, ActionExecutor)
			child.ActionRef = a
			l.PushChild(child)
			return bounce.Delegate()
		default:
			if err := cell.Copy(l.Out, &branch); err != nil {
				return bounce.Thrown(err)
			}
			l.ClearStale()
			return bounce.Value(l.Out)
		}

	default:
		return bounce.Thrown(rterror.New(rterror.TagStackImbalance, "group-branch level in unknown state"))
	}
}
