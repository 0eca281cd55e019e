package natives

import (
	"evocore/internal/action"
	"evocore/internal/bounce"
	"evocore/internal/cell"
	"evocore/internal/ctx"
	"evocore/internal/level"
	"evocore/internal/rterror"
)

func newBinaryIntAction(label string, enfix bool, f func(a, b int64) int64) *action.Action {
	exemplar, _ := ctx.New(cell.HeartObject, symKeys("a", "b"), nil)
	params := []*action.Typeset{
		(&action.Typeset{Name: "a", Class: action.ParamNormal}).Allow(cell.HeartInteger),
		(&action.Typeset{Name: "b", Class: action.ParamNormal}).Allow(cell.HeartInteger),
	}
	dispatcher := func(l *level.Level) bounce.Bounce {
		av, _ := l.Arg(1)
		bv, _ := l.Arg(2)
		x, ok1 := asInt(av)
		y, ok2 := asInt(bv)
		if !ok1 || !ok2 {
			return bounce.Thrown(rterror.ArgTypeMismatch(label, "non-integer"))
		}
		v := intVal(f(x, y))
		if err := cell.Copy(l.Out, &v); err != nil {
			return bounce.Thrown(err)
		}
		return bounce.Value(l.Out)
	}
	a := action.New(exemplar, params, []bool{false, false}, dispatcher, label)
	a.Enfix = enfix
	return a
}

// NewAdd builds the infix "+" action: `1 + 2` steals 1 as its left
// argument via enfix fulfillment.
func NewAdd() *action.Action {
	return newBinaryIntAction("+", true, func(a, b int64) int64 { return a + b })
}

// NewMultiply builds the infix "*" action.
func NewMultiply() *action.Action {
	return newBinaryIntAction("*", true, func(a, b int64) int64 { return a * b })
}

// NewEqual builds the prefix "equal?" action.
func NewEqual() *action.Action {
	exemplar, _ := ctx.New(cell.HeartObject, symKeys("a", "b"), nil)
	params := []*action.Typeset{
		{Name: "a", Class: action.ParamNormal, Hearts: allTypeset()},
		{Name: "b", Class: action.ParamNormal, Hearts: allTypeset()},
	}
	dispatcher := func(l *level.Level) bounce.Bounce {
		av, _ := l.Arg(1)
		bv, _ := l.Arg(2)
		v := logicVal(cell.Equals(av, bv))
		if err := cell.Copy(l.Out, &v); err != nil {
			return bounce.Thrown(err)
		}
		return bounce.Value(l.Out)
	}
	return action.New(exemplar, params, []bool{false, false}, dispatcher, "equal?")
}
