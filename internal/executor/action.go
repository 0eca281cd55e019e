package executor

import (
	"evocore/internal/action"
	"evocore/internal/bounce"
	"evocore/internal/cell"
	"evocore/internal/level"
	"evocore/internal/rterror"
)

// Action_Executor state values (spec.md §4.3). Exported because the
// trampoline sets them directly to re-enter a dispatcher on
// REDO_CHECKED/REDO_UNCHECKED without calling back into this package for
// anything beyond the constant.
const (
	ActionStateInitial     byte = iota
	ActionStateFulfilling       // walking params, pushing a sub-evaluator per normal/soft-quoted arg
	ActionStateTypecheck        // every arg filled; enforce typesets before dispatch
	ActionStateDispatchOnly     // skip typecheck (REDO_UNCHECKED) and call the dispatcher directly
)

// ActionExecutor runs the INITIAL_ENTRY -> FULFILLING_ARGS -> TYPECHECKING
// -> DISPATCHING state machine of spec.md §4.3.
func ActionExecutor(l *level.Level) bounce.Bounce {
	a, ok := l.ActionRef.(*action.Action)
	if !ok || a == nil {
		return bounce.Thrown(rterror.New(rterror.TagStackImbalance, "action level has no action"))
	}

	switch l.State {
	case ActionStateInitial:
		start, err := primeEnfixLeft(l, a)
		if err != nil {
			return bounce.Thrown(err)
		}
		l.Cursor = start
		l.State = ActionStateFulfilling
		fallthrough
	case ActionStateFulfilling:
		if b, done := fulfill(l, a); !done {
			return b
		}
		l.State = ActionStateTypecheck
		fallthrough
	case ActionStateTypecheck:
		if err := typecheckAll(l, a); err != nil {
			return bounce.Thrown(err)
		}
		return a.Dispatcher(l)
	case ActionStateDispatchOnly:
		return a.Dispatcher(l)
	default:
		return bounce.Thrown(rterror.New(rterror.TagStackImbalance, "action level in unknown state"))
	}
}

// primeEnfixLeft fills the first fillable argument slot with the stolen
// left operand (spec.md §4.3 "Enfix left") before ordinary fulfillment
// begins, decaying an isotope left value exactly as a normal argument
// fetch would, and returns the slot fulfillment should resume at (past
// the slot it just filled, or 1 if this isn't an enfix invocation).
func primeEnfixLeft(l *level.Level, a *action.Action) (int, error) {
	if l.Flags&level.FlagEnfix == 0 || l.EnfixLeft == nil {
		return 1, nil
	}
	idx := a.FirstArgIndex()
	target, err := l.Arg(idx)
	if err != nil {
		return 0, err
	}
	*target = *l.EnfixLeft
	if idx-1 < len(a.Params) {
		if a.Params[idx-1].Class == action.ParamMeta {
			metaQuotify(target)
		} else if err := decayIsotope(target); err != nil {
			return 0, err
		}
	}
	return idx + 1, nil
}

// fulfill advances l.Cursor through a.Params, filling argument slots.
// Returns (zero-Bounce, true) once every slot has been handled; otherwise
// returns the Bounce the caller should return immediately (a Continue
// after pushing a sub-evaluator Level, or a Thrown on an unfillable
// required argument).
func fulfill(l *level.Level, a *action.Action) (bounce.Bounce, bool) {
	for l.Cursor <= a.NumParams() {
		i := l.Cursor
		if i-1 < len(a.Specialized) && a.Specialized[i-1] {
			l.Cursor++
			continue
		}
		param := a.Params[i-1]
		switch param.Class {
		case action.ParamRefinement:
			// Refinement invocation is driven by PATH! syntax, which has no
			// producer in this evaluator (the scanner/parser are out of
			// scope); refinements always arrive unused.
			target, _ := l.Arg(i)
			*target = cell.Cell{Heart: cell.HeartBlank, Quote: cell.QuotePlain}
			l.Cursor++

		case action.ParamLocal:
			l.Cursor++

		case action.ParamOutput:
			target, _ := l.Arg(i)
			*target = cell.Cell{Heart: cell.HeartBlank, Quote: cell.QuotePlain}
			l.Cursor++

		case action.ParamReturn:
			ret := action.MakeReturnAction(l)
			target, _ := l.Arg(i)
			*target = cell.Cell{Heart: cell.HeartAction, Quote: cell.QuotePlain, Payload: cell.Payload{First: ret}}
			l.Cursor++

		case action.ParamVariadic:
			target, _ := l.Arg(i)
			*target = cell.Cell{Heart: cell.HeartVarargs, Quote: cell.QuotePlain, Payload: cell.Payload{First: l.Feed}}
			l.Cursor++

		case action.ParamQuoted, action.ParamHardQuoted:
			if l.Feed.AtEnd() {
				if !fillEndable(l, param, i) {
					return bounce.Thrown(rterror.ArgTypeMismatch(string(param.Name), "end-of-input")), false
				}
				l.Cursor++
				continue
			}
			v, err := l.Feed.Value()
			if err != nil {
				return bounce.Thrown(err), false
			}
			if param.Flags&action.ParamSkippable != 0 && !param.Allows(v.Heart) {
				target, _ := l.Arg(i)
				*target = cell.Cell{Heart: cell.HeartBlank, Quote: cell.QuotePlain}
				l.Cursor++
				continue
			}
			_ = l.Feed.Fetch()
			target, _ := l.Arg(i)
			*target = *v
			l.Cursor++

		case action.ParamNormal, action.ParamSoftQuoted, action.ParamMeta:
			if !l.ChildWroteOut {
				if l.Feed.AtEnd() {
					if !fillEndable(l, param, i) {
						return bounce.Thrown(rterror.ArgTypeMismatch(string(param.Name), "end-of-input")), false
					}
					l.Cursor++
					continue
				}
				target, _ := l.Arg(i)
				child := level.New(l.Feed, target, EvaluatorExecutor)
				child.Specifier = l.Specifier
				l.PushChild(child)
				l.ChildWroteOut = true
				return bounce.Continue(), false
			}
			l.ChildWroteOut = false
			target, _ := l.Arg(i)
			if param.Class == action.ParamMeta {
				metaQuotify(target)
			} else if err := decayIsotope(target); err != nil {
				return bounce.Thrown(err), false
			}
			l.Cursor++
		}
	}
	return bounce.Bounce{}, true
}

func fillEndable(l *level.Level, param *action.Typeset, i int) bool {
	if param.Flags&action.ParamEndable == 0 {
		return false
	}
	target, _ := l.Arg(i)
	*target = cell.Cell{Heart: cell.HeartBlank, Quote: cell.QuotePlain}
	return true
}

func typecheckAll(l *level.Level, a *action.Action) error {
	for i := 1; i <= a.NumParams(); i++ {
		arg, err := l.Arg(i)
		if err != nil {
			return err
		}
		if err := action.TypecheckIncludingConstraints(a.Params[i-1], arg); err != nil {
			return err
		}
	}
	return nil
}

// metaQuotify lifts a value into its meta form: an isotope becomes its
// quasi form, everything else gains one quote level (spec.md §4.1).
func metaQuotify(c *cell.Cell) {
	if c.Quote.IsIsotope() {
		c.Quote = cell.QuasiBase
		return
	}
	c.Quote = c.Quote.Quoted()
}

// decayIsotope turns an isotope into its plain form on read by a
// non-meta parameter, raising if the heart has no plain-form meaning
// (only HeartError isotopes in this evaluator; a full implementation also
// decays isotope WORD!s to an error here).
func decayIsotope(c *cell.Cell) error {
	if !c.Quote.IsIsotope() {
		return nil
	}
	if c.Heart == cell.HeartError {
		return rterror.Raised(rterror.TagBadBranchType, "isotope error decayed by a non-meta parameter")
	}
	c.Quote = cell.QuotePlain
	return nil
}
