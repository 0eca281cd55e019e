// Package action implements the evaluator's callable value (spec.md §3.4,
// §4.8, C4): a details array, an exemplar context naming parameters, a
// dispatcher function, and the parameter-class/typeset machinery the
// Action_Executor's fulfillment state machine (internal/executor) drives.
package action

import (
	"fmt"

	"evocore/internal/bounce"
	"evocore/internal/cell"
	"evocore/internal/ctx"
	"evocore/internal/level"
	"evocore/internal/rterror"
	"evocore/internal/series"
)

// ParamClass is the parameter-class byte of a Typeset (spec.md §4.8).
type ParamClass byte

const (
	ParamNormal ParamClass = iota
	ParamQuoted
	ParamMeta
	ParamHardQuoted
	ParamSoftQuoted
	ParamVariadic
	ParamRefinement
	ParamReturn
	ParamOutput
	ParamLocal
	ParamNone
)

func (c ParamClass) String() string {
	switch c {
	case ParamNormal:
		return "normal"
	case ParamQuoted:
		return "quoted"
	case ParamMeta:
		return "meta"
	case ParamHardQuoted:
		return "hard-quoted"
	case ParamSoftQuoted:
		return "soft-quoted"
	case ParamVariadic:
		return "variadic"
	case ParamRefinement:
		return "refinement"
	case ParamReturn:
		return "return"
	case ParamOutput:
		return "output"
	case ParamLocal:
		return "local"
	default:
		return "none"
	}
}

// ParamFlags are the per-parameter modifier bits (spec.md §4.8, §4.3).
type ParamFlags uint8

const (
	ParamEndable ParamFlags = 1 << iota
	ParamSkippable
	ParamConst
	ParamNoopIfBlank
	ParamPredicate
)

// Typeset packs a 64-bit heart bitmap with a parameter class and flags.
type Typeset struct {
	Name      ctx.Symbol
	Hearts    uint64
	Class     ParamClass
	Flags     ParamFlags
	Predicate func(*cell.Cell) bool
}

// Allow marks h as an acceptable heart for this parameter.
func (t *Typeset) Allow(h cell.Heart) *Typeset {
	t.Hearts |= 1 << uint(h)
	return t
}

// Allows reports whether h is an acceptable heart for this parameter.
func (t *Typeset) Allows(h cell.Heart) bool { return t.Hearts&(1<<uint(h)) != 0 }

func (t *Typeset) has(f ParamFlags) bool { return t.Flags&f != 0 }

// Dispatcher is the function implementing an action's behavior. It reads
// arguments from l.Varlist (via l.Arg) and writes its result into l.Out,
// returning a Bounce exactly as spec.md §4.6 describes.
type Dispatcher func(l *level.Level) bounce.Bounce

// Action is a callable value.
type Action struct {
	Details  *series.Series // slot 0 archetype, slots 1..M dispatcher-private
	Exemplar *ctx.Context    // keylist names params/locals; varlist holds defaults
	Params   []*Typeset      // aligned with Exemplar.Keylist, one per key
	// Specialized[i] is true when Exemplar.Varlist slot i+1 already holds
	// the final (hidden) value rather than a default/typeset marker.
	Specialized []bool

	Dispatcher Dispatcher
	Partials   *series.Series // optional partial refinement ordering
	Label      string
	Binding    *ctx.Context // for definitional return/leave
	Enfix      bool         // infix binding: steals the left argument from the feed's prior result
}

// NumParams returns the number of declared parameters (including RETURN
// and locals).
func (a *Action) NumParams() int { return len(a.Params) }

// HasReturn reports whether keylist slot 1 is the RETURN parameter
// (spec.md §4.3 "Definitional return", and the Open Question in §9:
// RETURN always occupies slot 1 when present).
func (a *Action) HasReturn() bool {
	return len(a.Params) > 0 && a.Params[0].Class == ParamReturn
}

// FirstArgIndex returns the 1-based varlist slot of the first
// non-return argument, resolving the Open Question about RETURN
// intruding on generic dispatch's "primary argument" slot.
func (a *Action) FirstArgIndex() int {
	if a.HasReturn() {
		return 2
	}
	return 1
}

// New constructs an action from a compiled/native dispatcher and an
// exemplar describing its parameter shape.
func New(exemplar *ctx.Context, params []*Typeset, specialized []bool, dispatcher Dispatcher, label string) *Action {
	details := series.NewArray(1)
	a := &Action{
		Exemplar:    exemplar,
		Params:      params,
		Specialized: specialized,
		Dispatcher:  dispatcher,
		Label:       label,
		Details:     details,
	}
	archetype := cell.Cell{Heart: cell.HeartAction, Quote: cell.QuotePlain, Payload: cell.Payload{First: a}}
	_ = details.Append(archetype)
	return a
}

// BuildFrame allocates a fresh varlist for invoking a: slot 0 is the FRAME
// archetype referencing a; slots 1..N start as the exemplar's defaults
// (already-specialized slots carry their final value; unspecialized slots
// carry blank placeholders the Action_Executor fills in, spec.md §4.3/§8).
func (a *Action) BuildFrame() (*ctx.Context, error) {
	values := make([]cell.Cell, a.NumParams())
	for i := range values {
		v, err := a.Exemplar.Varlist.At(i + 1)
		if err != nil {
			return nil, err
		}
		if a.Specialized[i] {
			values[i] = *v
		} else {
			values[i] = cell.Cell{Heart: cell.HeartBlank, Quote: cell.QuotePlain}
		}
	}
	frame, err := ctx.New(cell.HeartFrame, a.Exemplar.Keylist, values)
	if err != nil {
		return nil, err
	}
	archetype, err := frame.Archetype()
	if err != nil {
		return nil, err
	}
	archetype.Payload.First = a
	return frame, nil
}

// ReturnLabel derives the unique throw-catch label a definitional RETURN
// bound to l should use (spec.md §4.3's "invoking it throws with this
// Level as the catch target").
func ReturnLabel(l *level.Level) string {
	return fmt.Sprintf("definitional-return-%p", l)
}

// MakeReturnAction builds the zero-arity-result action that fills arg
// slot 1 (RETURN) of an action Level whose Action has a declared return:
// invoking it throws a value back to l.
func MakeReturnAction(l *level.Level) *Action {
	l.CatchLabel = ReturnLabel(l)
	exemplar, _ := ctx.New(cell.HeartObject, ctx.NewKeylist("value"), nil)
	params := []*Typeset{{Name: "value", Class: ParamNormal, Hearts: ^uint64(0)}}
	dispatcher := func(inner *level.Level) bounce.Bounce {
		v, err := inner.Arg(1)
		if err != nil {
			return bounce.Thrown(err)
		}
		return bounce.Thrown(rterror.Thrown(l.CatchLabel, *v))
	}
	return New(exemplar, params, []bool{false}, dispatcher, "return")
}

// TypecheckIncludingConstraints enforces a parameter's typeset against a
// fulfilled argument (spec.md §4.3 TYPECHECKING, §4.8).
func TypecheckIncludingConstraints(param *Typeset, arg *cell.Cell) error {
	switch param.Class {
	case ParamLocal, ParamNone:
		return nil
	case ParamReturn, ParamOutput:
		// Structurally distinct per spec.md §9 Open Questions: OUTPUT (and
		// RETURN's own slot) are not checked against a typeset. The only
		// check is that the slot is present; whether it references a
		// writable location is not checked.
		if arg == nil {
			return rterror.ArgTypeMismatch(string(param.Name), "none")
		}
		return nil
	}
	if arg == nil {
		if param.has(ParamEndable) {
			return nil
		}
		return rterror.ArgTypeMismatch(string(param.Name), "end-of-input")
	}
	if arg.Heart == cell.HeartBlank && param.has(ParamNoopIfBlank) {
		return nil
	}
	if param.Predicate != nil {
		if !param.Predicate(arg) {
			return rterror.ArgTypeMismatch(string(param.Name), arg.Heart.String())
		}
		return nil
	}
	if param.Hearts == 0 {
		// An empty typeset: only NULL (unused) or a blackhole (used,
		// argumentless) may fill it, per spec.md §8.
		if arg.Heart == cell.HeartBlank {
			return nil
		}
		return rterror.BadRefinement(string(param.Name))
	}
	if !param.Allows(arg.Heart) {
		return rterror.ArgTypeMismatch(string(param.Name), arg.Heart.String())
	}
	return nil
}
