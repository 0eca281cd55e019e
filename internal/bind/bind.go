// Package bind implements the binding resolver (spec.md §4.7, C10): it
// maps a word cell's (symbol, binding) pair to the cell that word names,
// honoring four binding kinds — a context varlist, a LET/module patch, a
// module attachment, and a relative (action-details) binding that
// requires a specifier.
package bind

import (
	"evocore/internal/cell"
	"evocore/internal/ctx"
	"evocore/internal/rterror"
	"evocore/internal/series"
)

// IndexAttached marks a module-attachment binding: resolution goes
// through the module's hash-indexed symbol table rather than a cached
// slot index.
const IndexAttached = (1 << 20) - 1

// ContextBinding binds a word directly to a context varlist, with an
// optional cached slot index (spec.md §4.7 step 2).
type ContextBinding struct {
	Ctx         *ctx.Context
	CachedIndex int
}

func (*ContextBinding) BindingKind() string { return "context" }

// Patch is a singular array representing a LET-introduced or module-level
// variable binding (spec.md §3.2 "Singular", §4.7 step 3): resolution is
// direct, no symbol search.
type Patch struct {
	Cell *cell.Cell
	Name ctx.Symbol
}

func (*Patch) BindingKind() string { return "patch" }

// PatchBinding binds a word to a Patch.
type PatchBinding struct {
	Patch *Patch
}

func (*PatchBinding) BindingKind() string { return "patch-binding" }

// Module is a hash-indexed symbol table used for module-attachment
// bindings (spec.md §4.7 step 4). Entries are added with Define; no
// package in this module outside the tests builds a Module (there is no
// module loader, and the scanner/lexer is out of scope, spec.md §1).
type Module struct {
	Name    string
	symbols map[ctx.Symbol]*cell.Cell
}

// NewModule creates an empty module symbol table.
func NewModule(name string) *Module {
	return &Module{Name: name, symbols: make(map[ctx.Symbol]*cell.Cell)}
}

// Define adds or overwrites a module-level binding.
func (m *Module) Define(sym ctx.Symbol, c cell.Cell) {
	cc := c
	m.symbols[sym] = &cc
}

// Lookup searches the module's hash-indexed symbol table.
func (m *Module) Lookup(sym ctx.Symbol) (*cell.Cell, error) {
	if c, ok := m.symbols[sym]; ok {
		return c, nil
	}
	return nil, rterror.UnboundWord(string(sym))
}

func (*Module) BindingKind() string { return "module" }

// ModuleBinding binds a word to a Module attachment (index == IndexAttached).
type ModuleBinding struct {
	Module *Module
}

func (*ModuleBinding) BindingKind() string { return "module-binding" }

// Relative binds a word to an action's details array rather than a
// varlist; it is only resolvable in the presence of a Specifier supplying
// the running frame. Evaluating an unrooted relative word without a
// specifier is a bug (spec.md §4.7), surfaced here as an error rather
// than a panic so a host embedding the evaluator gets a catchable
// failure instead of a crash.
type Relative struct {
	Details *series.Series
	Sym     ctx.Symbol
}

func (*Relative) BindingKind() string { return "relative" }

// RelativeBinding binds a word relatively.
type RelativeBinding struct {
	Relative *Relative
}

func (*RelativeBinding) BindingKind() string { return "relative-binding" }

// Specifier supplies the running frame's varlist for resolving a Relative
// binding, per spec.md §4.7.
type Specifier interface {
	SpecifierVarlist() *ctx.Context
}

// Resolve implements the dispatch of spec.md §4.7: word cell with no
// binding is unbound (error); context binding re-searches on a cache
// miss; patch binding is direct; module binding searches the module's
// symbol table; relative binding requires specifier.
func Resolve(word *cell.Cell, name ctx.Symbol, specifier Specifier) (*cell.Cell, error) {
	switch b := word.Extra.(type) {
	case nil:
		return nil, rterror.UnboundWord(string(name))
	case *ContextBinding:
		v, idx, err := b.Ctx.GetCached(name, b.CachedIndex)
		if err == nil {
			b.CachedIndex = idx
		}
		return v, err
	case *PatchBinding:
		return b.Patch.Cell, nil
	case *ModuleBinding:
		return b.Module.Lookup(name)
	case *RelativeBinding:
		if specifier == nil {
			return nil, rterror.RelativeUnspecified(string(name))
		}
		return specifier.SpecifierVarlist().Get(name)
	default:
		return nil, rterror.UnboundWord(string(name))
	}
}

// BindWordToContext mutates word's Extra to a fresh ContextBinding. This
// is the "reading raises, writing raises" case from spec.md §4.7 step 1
// resolved in the other direction: attaching a binding so subsequent
// reads/writes succeed.
func BindWordToContext(word *cell.Cell, c *ctx.Context) {
	word.Extra = &ContextBinding{Ctx: c}
}

// BindWordToPatch attaches a direct patch binding (LET semantics).
func BindWordToPatch(word *cell.Cell, p *Patch) {
	word.Extra = &PatchBinding{Patch: p}
}

// BindWordToModule attaches a module-attachment binding.
func BindWordToModule(word *cell.Cell, m *Module) {
	word.Extra = &ModuleBinding{Module: m}
}

// BindWordRelative attaches a relative (unspecified) binding, as produced
// when compiling/copying a function body that references its own params.
func BindWordRelative(word *cell.Cell, details *series.Series, name ctx.Symbol) {
	word.Extra = &RelativeBinding{Relative: &Relative{Details: details, Sym: name}}
}
