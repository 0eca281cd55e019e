package bind

import (
	"testing"

	"evocore/internal/cell"
	"evocore/internal/ctx"
)

func wordCell() cell.Cell {
	return cell.Cell{Heart: cell.HeartWord, Quote: cell.QuotePlain}
}

func TestResolveUnboundWordErrors(t *testing.T) {
	w := wordCell()
	if _, err := Resolve(&w, "foo", nil); err == nil {
		t.Fatalf("Resolve(unbound): want error, got nil")
	}
}

func TestResolveContextBindingCaches(t *testing.T) {
	keys := ctx.NewKeylist("x")
	c, _ := ctx.New(cell.HeartObject, keys, nil)
	_ = c.Set("x", cell.Cell{Heart: cell.HeartInteger, Quote: cell.QuotePlain, Payload: cell.Payload{First: int64(5)}})

	w := wordCell()
	BindWordToContext(&w, c)
	v, err := Resolve(&w, "x", nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v.Payload.First.(int64) != 5 {
		t.Fatalf("Resolve(x) = %v, want 5", v.Payload.First)
	}
	b := w.Extra.(*ContextBinding)
	if b.CachedIndex != 1 {
		t.Fatalf("CachedIndex = %d, want 1 after lookup", b.CachedIndex)
	}
}

func TestResolvePatchIsDirect(t *testing.T) {
	target := cell.Cell{Heart: cell.HeartInteger, Quote: cell.QuotePlain, Payload: cell.Payload{First: int64(99)}}
	p := &Patch{Cell: &target, Name: "y"}
	w := wordCell()
	BindWordToPatch(&w, p)
	v, err := Resolve(&w, "y", nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v.Payload.First.(int64) != 99 {
		t.Fatalf("Resolve(patch) = %v, want 99", v.Payload.First)
	}
}

func TestResolveModuleAttachment(t *testing.T) {
	m := NewModule("mymod")
	m.Define("z", cell.Cell{Heart: cell.HeartInteger, Quote: cell.QuotePlain, Payload: cell.Payload{First: int64(3)}})
	w := wordCell()
	BindWordToModule(&w, m)
	v, err := Resolve(&w, "z", nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v.Payload.First.(int64) != 3 {
		t.Fatalf("Resolve(module) = %v, want 3", v.Payload.First)
	}
}

func TestResolveRelativeWithoutSpecifierErrors(t *testing.T) {
	w := wordCell()
	BindWordRelative(&w, nil, "q")
	if _, err := Resolve(&w, "q", nil); err == nil {
		t.Fatalf("Resolve(relative, nil specifier): want error, got nil")
	}
}

type fakeSpecifier struct{ c *ctx.Context }

func (f fakeSpecifier) SpecifierVarlist() *ctx.Context { return f.c }

func TestResolveRelativeWithSpecifier(t *testing.T) {
	keys := ctx.NewKeylist("q")
	c, _ := ctx.New(cell.HeartFrame, keys, nil)
	_ = c.Set("q", cell.Cell{Heart: cell.HeartInteger, Quote: cell.QuotePlain, Payload: cell.Payload{First: int64(11)}})

	w := wordCell()
	BindWordRelative(&w, nil, "q")
	v, err := Resolve(&w, "q", fakeSpecifier{c: c})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v.Payload.First.(int64) != 11 {
		t.Fatalf("Resolve(relative) = %v, want 11", v.Payload.First)
	}
}
