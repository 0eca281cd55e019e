// Package feed implements the lazy cursor over an input source that the
// evaluator steps through (spec.md §3.5, C5): either an array feed
// (array + index) or a variadic feed (an externally supplied splice of
// cells, as the embedding API's rebValue uses to interleave host values
// into a source expression). A Feed may be shared between a parent Level
// and a child Level — e.g. so an infix operator's left argument can be
// re-read without re-fetching — by sharing the same *Feed pointer rather
// than copying it.
package feed

import (
	"evocore/internal/cell"
	"evocore/internal/rterror"
	"evocore/internal/series"
)

// Kind distinguishes the two feed sources.
type Kind byte

const (
	KindArray Kind = iota
	KindVariadic
)

// Feed is a cursor over input cells.
type Feed struct {
	Kind  Kind
	Array *series.Series // used when Kind == KindArray
	Index int

	Variadic []*cell.Cell // used when Kind == KindVariadic; externally owned cells
}

// NewArrayFeed creates a feed over an in-memory array, starting at index 0.
func NewArrayFeed(a *series.Series) *Feed {
	return &Feed{Kind: KindArray, Array: a}
}

// NewVariadicFeed creates a feed over an external splice of cells (the
// embedding API's rebValue-style variadic argument list).
func NewVariadicFeed(cells []*cell.Cell) *Feed {
	return &Feed{Kind: KindVariadic, Variadic: cells}
}

// AtEnd reports whether the cursor has exhausted the source. Reaching
// index == length is end-of-feed, not an out-of-range condition
// (spec.md §8) — this is exactly the distinction series.At does not make,
// which is why Feed never calls series.At(Len()).
func (f *Feed) AtEnd() bool {
	switch f.Kind {
	case KindArray:
		return f.Index >= f.Array.Len()
	case KindVariadic:
		return f.Index >= len(f.Variadic)
	default:
		return true
	}
}

// Value returns the cell at the cursor without advancing.
func (f *Feed) Value() (*cell.Cell, error) {
	if f.AtEnd() {
		return nil, rterror.New(rterror.TagIndexOutOfRange, "feed read at end of input")
	}
	switch f.Kind {
	case KindArray:
		return f.Array.At(f.Index)
	case KindVariadic:
		return f.Variadic[f.Index], nil
	default:
		return nil, rterror.New(rterror.TagIndexOutOfRange, "feed has no source")
	}
}

// Fetch advances the cursor by one cell.
func (f *Feed) Fetch() error {
	if f.AtEnd() {
		return rterror.New(rterror.TagIndexOutOfRange, "feed fetch past end of input")
	}
	f.Index++
	return nil
}

// ValueAndFetch is the common "peek current, then advance" combination
// used by the Evaluator_Executor for each step.
func (f *Feed) ValueAndFetch() (*cell.Cell, error) {
	c, err := f.Value()
	if err != nil {
		return nil, err
	}
	if err := f.Fetch(); err != nil {
		return nil, err
	}
	return c, nil
}

// Peek looks ahead n cells without advancing (n=0 is Value()). Used by
// infix detection, which peeks one cell ahead for an enfix binding.
func (f *Feed) Peek(n int) (*cell.Cell, bool) {
	idx := f.Index + n
	switch f.Kind {
	case KindArray:
		if idx < 0 || idx >= f.Array.Len() {
			return nil, false
		}
		c, err := f.Array.At(idx)
		if err != nil {
			return nil, false
		}
		return c, true
	case KindVariadic:
		if idx < 0 || idx >= len(f.Variadic) {
			return nil, false
		}
		return f.Variadic[idx], true
	default:
		return nil, false
	}
}
