package action

import (
	"testing"

	"evocore/internal/bounce"
	"evocore/internal/cell"
	"evocore/internal/ctx"
	"evocore/internal/feed"
	"evocore/internal/level"
)

func newTestAction(t *testing.T) *Action {
	t.Helper()
	keys := ctx.NewKeylist("x")
	exemplar, err := ctx.New(cell.HeartObject, keys, nil)
	if err != nil {
		t.Fatalf("exemplar: %v", err)
	}
	params := []*Typeset{(&Typeset{Name: "x", Class: ParamNormal}).Allow(cell.HeartInteger)}
	dispatcher := func(l *level.Level) bounce.Bounce {
		arg, _ := l.Arg(1)
		return bounce.Value(arg)
	}
	return New(exemplar, params, []bool{false}, dispatcher, "double")
}

func TestBuildFrameSatisfiesArityInvariant(t *testing.T) {
	a := newTestAction(t)
	frame, err := a.BuildFrame()
	if err != nil {
		t.Fatalf("BuildFrame: %v", err)
	}
	if frame.Varlist.Len() != a.NumParams()+1 {
		t.Fatalf("varlist slots = %d, want NumParams()+1 = %d", frame.Varlist.Len(), a.NumParams()+1)
	}
}

func TestBuildFrameArchetypeReferencesAction(t *testing.T) {
	a := newTestAction(t)
	frame, _ := a.BuildFrame()
	arch, _ := frame.Archetype()
	if arch.Heart != cell.HeartFrame {
		t.Fatalf("archetype heart = %v, want frame", arch.Heart)
	}
	if arch.Payload.First.(*Action) != a {
		t.Fatalf("archetype does not reference the originating action")
	}
}

func TestTypecheckAllowsDeclaredHeart(t *testing.T) {
	param := (&Typeset{Name: "x", Class: ParamNormal}).Allow(cell.HeartInteger)
	arg := &cell.Cell{Heart: cell.HeartInteger, Quote: cell.QuotePlain}
	if err := TypecheckIncludingConstraints(param, arg); err != nil {
		t.Fatalf("Typecheck: %v", err)
	}
}

func TestTypecheckRejectsWrongHeart(t *testing.T) {
	param := (&Typeset{Name: "x", Class: ParamNormal}).Allow(cell.HeartInteger)
	arg := &cell.Cell{Heart: cell.HeartTextString, Quote: cell.QuotePlain}
	if err := TypecheckIncludingConstraints(param, arg); err == nil {
		t.Fatalf("Typecheck: want error for disallowed heart, got nil")
	}
}

func TestTypecheckEmptyRefinementTypesetAllowsOnlyBlank(t *testing.T) {
	param := &Typeset{Name: "opt", Class: ParamRefinement}
	blank := &cell.Cell{Heart: cell.HeartBlank, Quote: cell.QuotePlain}
	if err := TypecheckIncludingConstraints(param, blank); err != nil {
		t.Fatalf("Typecheck(blank): %v", err)
	}
	other := &cell.Cell{Heart: cell.HeartInteger, Quote: cell.QuotePlain}
	if err := TypecheckIncludingConstraints(param, other); err == nil {
		t.Fatalf("Typecheck(non-blank, empty typeset): want error, got nil")
	}
}

func TestTypecheckEndableAllowsMissingArg(t *testing.T) {
	param := &Typeset{Name: "x", Class: ParamNormal, Flags: ParamEndable}
	if err := TypecheckIncludingConstraints(param, nil); err != nil {
		t.Fatalf("Typecheck(end, endable): %v", err)
	}
}

func TestMakeReturnActionThrowsToLevel(t *testing.T) {
	f := feed.NewArrayFeed(nil)
	out := &cell.Cell{}
	l := level.New(f, out, nil)
	ret := MakeReturnAction(l)
	frame, err := ret.BuildFrame()
	if err != nil {
		t.Fatalf("BuildFrame: %v", err)
	}
	value := cell.Cell{Heart: cell.HeartInteger, Quote: cell.QuotePlain, Payload: cell.Payload{First: int64(7)}}
	_ = frame.Set("value", value)
	retLevel := level.NewActionLevel(f, out, frame, nil)
	b := ret.Dispatcher(retLevel)
	if b.Kind != bounce.KindThrown {
		t.Fatalf("return dispatcher bounce = %v, want KindThrown", b.Kind)
	}
	if l.CatchLabel == "" {
		t.Fatalf("CatchLabel not set on target level")
	}
}
