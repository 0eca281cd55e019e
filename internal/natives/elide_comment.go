package natives

import (
	"evocore/internal/action"
	"evocore/internal/bounce"
	"evocore/internal/cell"
	"evocore/internal/ctx"
	"evocore/internal/level"
)

// NewElide builds the ELIDE action: evaluates its argument for side
// effect and always vanishes (spec.md §8 scenario 3 — reduce keeps "3"
// and "12" but not ELIDE's own slot).
func NewElide() *action.Action {
	exemplar, _ := ctx.New(cell.HeartObject, symKeys("value"), nil)
	params := []*action.Typeset{
		{Name: "value", Class: action.ParamNormal, Hearts: allTypeset()},
	}
	dispatcher := func(l *level.Level) bounce.Bounce { return bounce.Void() }
	return action.New(exemplar, params, []bool{false}, dispatcher, "elide")
}

// NewComment builds the COMMENT action: takes a literal (unevaluated)
// string or block and always vanishes (spec.md §8 scenario 4).
func NewComment() *action.Action {
	exemplar, _ := ctx.New(cell.HeartObject, symKeys("ignored"), nil)
	params := []*action.Typeset{
		(&action.Typeset{Name: "ignored", Class: action.ParamHardQuoted}).Allow(cell.HeartTextString).Allow(cell.HeartBlock),
	}
	dispatcher := func(l *level.Level) bounce.Bounce { return bounce.Void() }
	return action.New(exemplar, params, []bool{false}, dispatcher, "comment")
}
