// Package ctx implements a Context: the paired (varlist, keylist) that is
// the identity of both an object and a frame (spec.md §3.3). A Level's
// action invocation varlist and a user DEFINE'd object share this exact
// structure; only the archetype heart in varlist slot 0 differs.
package ctx

import (
	"evocore/internal/cell"
	"evocore/internal/rterror"
	"evocore/internal/series"
)

// Symbol is an interned word name. A production implementation interns
// these into a global table with O(1) pointer comparison; we keep the
// simple string form since symbol-table mechanics are not part of this
// spec's scope (the scanner/lexer that would produce them is explicitly
// out of scope, spec.md §1).
type Symbol string

// Keylist is the parallel array of symbol names shared by every Context
// derived from the same schema. Ancestor points at the keylist this one
// was extended from (object growth via APPEND-like operations), forming
// the chain used for frame/parameter-shape compatibility checks.
type Keylist struct {
	Symbols  []Symbol
	Ancestor *Keylist
}

// NewKeylist creates a root keylist (no ancestor) from symbol names.
func NewKeylist(symbols ...Symbol) *Keylist {
	return &Keylist{Symbols: append([]Symbol(nil), symbols...)}
}

// Len returns the number of keys (slots 1..N of the corresponding
// varlist).
func (k *Keylist) Len() int { return len(k.Symbols) }

// Index returns the 1-based varlist slot for sym, or 0 if absent.
func (k *Keylist) Index(sym Symbol) int {
	for i, s := range k.Symbols {
		if s == sym {
			return i + 1
		}
	}
	return 0
}

// Extend derives a child keylist with one additional trailing symbol,
// pointing Ancestor at k (object growth).
func (k *Keylist) Extend(sym Symbol) *Keylist {
	child := &Keylist{Symbols: append(append([]Symbol(nil), k.Symbols...), sym), Ancestor: k}
	return child
}

// CompatibleWith reports whether k descends from (or equals) other,
// walking the Ancestor chain — the check an action's frame uses to decide
// whether it satisfies another action's declared parameter shape.
func (k *Keylist) CompatibleWith(other *Keylist) bool {
	for cur := k; cur != nil; cur = cur.Ancestor {
		if cur == other {
			return true
		}
	}
	return false
}

// Context pairs a varlist (series.FlavorVarlist) with its Keylist. Slot 0
// of Varlist is the archetype cell; slots 1..N are the keylist-aligned
// values.
type Context struct {
	Varlist *series.Series
	Keylist *Keylist
}

// New builds a context whose varlist has archetype at slot 0 followed by
// one value per key (values must align 1:1 with keys, or be nil to fill
// with blank).
func New(archetypeHeart cell.Heart, keys *Keylist, values []cell.Cell) (*Context, error) {
	v := series.NewArray(keys.Len() + 1)
	archetype := cell.Cell{Heart: archetypeHeart, Quote: cell.QuotePlain}
	if err := v.Append(archetype); err != nil {
		return nil, err
	}
	for i := 0; i < keys.Len(); i++ {
		val := cell.Cell{Heart: cell.HeartBlank, Quote: cell.QuotePlain}
		if i < len(values) {
			val = values[i]
		}
		if err := v.Append(val); err != nil {
			return nil, err
		}
	}
	c := &Context{Varlist: v, Keylist: keys}
	if err := c.checkInvariant(); err != nil {
		return nil, err
	}
	return c, nil
}

// checkInvariant enforces len(varlist) == len(keylist)+1 (spec.md §3.3,
// §8).
func (c *Context) checkInvariant() error {
	if c.Varlist.Len() != c.Keylist.Len()+1 {
		return rterror.New(rterror.TagStackImbalance,
			"context invariant violated: len(varlist) != len(keylist)+1")
	}
	return nil
}

// Archetype returns varlist slot 0.
func (c *Context) Archetype() (*cell.Cell, error) { return c.Varlist.At(0) }

// Get returns the value cell bound to sym, or an error if sym is not a
// key of this context.
func (c *Context) Get(sym Symbol) (*cell.Cell, error) {
	idx := c.Keylist.Index(sym)
	if idx == 0 {
		return nil, rterror.UnboundWord(string(sym))
	}
	return c.Varlist.At(idx)
}

// GetCached looks up using a caller-cached slot index first (the fast
// path from spec.md §4.7 step 2), falling back to a keylist re-search if
// the symbol at that index no longer matches (e.g. after object growth).
func (c *Context) GetCached(sym Symbol, cachedIndex int) (*cell.Cell, int, error) {
	if cachedIndex >= 1 && cachedIndex <= c.Keylist.Len() && c.Keylist.Symbols[cachedIndex-1] == sym {
		v, err := c.Varlist.At(cachedIndex)
		return v, cachedIndex, err
	}
	idx := c.Keylist.Index(sym)
	if idx == 0 {
		return nil, 0, rterror.UnboundWord(string(sym))
	}
	v, err := c.Varlist.At(idx)
	return v, idx, err
}

// Set writes val into sym's slot.
func (c *Context) Set(sym Symbol, val cell.Cell) error {
	idx := c.Keylist.Index(sym)
	if idx == 0 {
		return rterror.UnboundWord(string(sym))
	}
	return c.Varlist.SetAt(idx, val)
}

// Grow extends the context with one new key, initialized to blank, and
// derives a child keylist (object growth). Existing Context values that
// share the old keylist are unaffected; they keep pointing at the
// ancestor until independently grown.
func (c *Context) Grow(sym Symbol) error {
	c.Keylist = c.Keylist.Extend(sym)
	return c.Varlist.Append(cell.Cell{Heart: cell.HeartBlank, Quote: cell.QuotePlain})
}

// Len returns the number of keys (not counting the archetype slot).
func (c *Context) Len() int { return c.Keylist.Len() }
