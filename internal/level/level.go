// Package level implements the Level (spec.md §3.6, C6): a single
// evaluation activation, heap-allocated and chained via Prior so the
// trampoline never relies on the host call stack for recursion depth.
//
// Mirrors the teacher's EnhancedCallFrame (internal/vm/vm.go): an ip +
// chunk + per-frame locals there becomes a Feed + Varlist + Spare here;
// the teacher's flat frame slice is replaced by an explicit Prior chain
// because the spec requires Levels to be independently heap-allocated and
// droppable out of order relative to a fixed array (throws drop many at
// once; redo drops none).
package level

import (
	"evocore/internal/bounce"
	"evocore/internal/cell"
	"evocore/internal/ctx"
	"evocore/internal/feed"
	"evocore/internal/series"
)

// ExecutorFunc advances one Level one step (spec.md §4.5, C7).
type ExecutorFunc func(l *Level) bounce.Bounce

// Flags is the Level-local flags bitset (spec.md §3.6).
type Flags uint16

const (
	FlagBranchMode Flags = 1 << iota
	FlagMetaResult
	FlagFailureOK
	FlagDispatcherCatches
	FlagIsAction
	FlagEnfix
)

// Baseline holds a data-stack/mold-buffer height snapshot (spec.md §3.6,
// §5, §8). Nothing in this module sets it at push or restores it on a
// throw or failure; the trampoline performs no rollback.
type Baseline struct {
	DataStackHeight int
	MoldBufferHeight int
}

// Level is a single evaluation activation.
type Level struct {
	Feed    *feed.Feed
	Out     *cell.Cell
	Spare   cell.Cell
	Varlist *ctx.Context // nil unless this Level is an action Level

	Executor ExecutorFunc
	State    byte // executor-private phase counter; 0 = initial entry
	Flags    Flags
	// Cursor and Pickups generalize the spec's one-byte sub-state into
	// full executor-private scratch integers for multi-position state
	// machines (the Action_Executor's arg-fulfillment cursor and deferred
	// out-of-order refinement queue, spec.md §4.3). A real C
	// implementation packs these into the same byte as State; Go has no
	// reason to fight the type system to match that, so they get their
	// own fields.
	Cursor   int
	Pickups  []int
	PickupAt int

	Prior *Level
	// Child is set by Executor just before returning KindContinue or
	// KindDelegate; the trampoline pushes it as the new top and clears it.
	Child *Level

	APIHandles []*cell.Cell
	Baseline   Baseline

	// ActionRef stashes the running action (an *action.Action) without
	// internal/level importing internal/action, mirroring the teacher's
	// EnhancedCallFrame.function interface{} field.
	ActionRef any

	// Specifier supplies this Level's varlist to resolve relative words
	// bound to the action whose body is being evaluated here. It
	// satisfies internal/bind.Specifier structurally.
	Specifier *ctx.Context

	// CatchLabel, when non-empty, makes this Level a catch target for a
	// thrown value whose label matches (spec.md §4.4, §7).
	CatchLabel string

	// EnfixLeft is set by the parent Evaluator_Executor just before
	// pushing an enfix action Level: the left operand, moved (not
	// copied) out of the parent's OUT (spec.md §4.3 "Enfix left").
	EnfixLeft *cell.Cell

	// PendingWord, ChildWroteOut and GroupSource are Evaluator_Executor-
	// and Group_Branch_Executor-private resumption state: which step kind
	// pushed the child Level currently running, and what to do with its
	// result once it drops. They live here rather than on a shared
	// "generic scratch" field so each executor's resumption logic reads
	// as ordinary struct field access instead of type-asserting an any.
	PendingWord   *cell.Cell     // non-nil: resuming a SET-WORD! assignment
	ChildWroteOut bool           // true: child wrote straight into Out, no Spare copy-back needed
	GroupSource   *series.Series // the group array a Group_Branch_Executor is still evaluating

	// Delegating is set by the trampoline when this Level returns
	// KindDelegate: once its child Level finishes, the trampoline drops
	// this Level too without re-entering its Executor, forwarding the
	// child's result straight to Prior (spec.md §4.6 DELEGATE).
	Delegating bool

	// Collected and InnerFeed are scratch state for a native dispatcher
	// that steps its own sub-feed across several resumptions, collecting
	// results as it goes (REDUCE, ALL: spec.md §8 scenarios 3-4).
	Collected *series.Series
	InnerFeed *feed.Feed

	// DispatchPhase is scratch state a multi-step native dispatcher may use
	// to record where to resume after pushing a sub-Level. The natives in
	// internal/natives do not use it (REDUCE and ALL keep their state in
	// InnerFeed/Collected). A dispatcher that returns KindContinue is
	// re-entered through ActionStateTypecheck, so typecheckAll runs again
	// before the dispatcher is called; only KindRedoUnchecked selects
	// ActionStateDispatchOnly.
	DispatchPhase int

	label string // the most recent word this Level's action was invoked under
}

// New creates a Level over f, writing results into out.
func New(f *feed.Feed, out *cell.Cell, executor ExecutorFunc) *Level {
	return &Level{Feed: f, Out: out, Executor: executor}
}

// NewActionLevel creates a Level for invoking an action, with its own
// varlist (args) built by the caller (internal/action.BuildFrame).
func NewActionLevel(f *feed.Feed, out *cell.Cell, varlist *ctx.Context, executor ExecutorFunc) *Level {
	l := New(f, out, executor)
	l.Varlist = varlist
	l.Flags |= FlagIsAction
	l.Specifier = varlist
	return l
}

// SpecifierVarlist implements internal/bind.Specifier.
func (l *Level) SpecifierVarlist() *ctx.Context { return l.Specifier }

// Arg returns the 1-based argument slot i of this action Level's varlist.
func (l *Level) Arg(i int) (*cell.Cell, error) {
	if l.Varlist == nil {
		return nil, ErrNotAnActionLevel
	}
	return l.Varlist.Varlist.At(i)
}

// NumArgs returns the number of argument slots (not counting the
// archetype).
func (l *Level) NumArgs() int {
	if l.Varlist == nil {
		return 0
	}
	return l.Varlist.Len()
}

// Label returns the symbol this Level's action was most recently invoked
// under (for diagnostics / the action's .Where chain).
func (l *Level) Label() string { return l.label }

// SetLabel records the invocation label.
func (l *Level) SetLabel(s string) { l.label = s }

// Stale reports whether Out is marked stale (a vanished step preserved
// its prior contents rather than overwriting them).
func (l *Level) Stale() bool { return l.Out != nil && l.Out.Flags&cell.FlagStale != 0 }

// Voided reports whether Out is additionally marked voided (the vanished
// step was itself a void-producer, as opposed to merely not overwriting a
// stale value already there).
func (l *Level) Voided() bool { return l.Out != nil && l.Out.Flags&cell.FlagVoided != 0 }

// MarkVoidStale sets the stale+voided bits on Out without touching its
// payload, per spec.md §4.6's "Void semantics".
func (l *Level) MarkVoidStale() {
	if l.Out != nil {
		l.Out.Flags |= cell.FlagStale | cell.FlagVoided
	}
}

// ClearStale clears both bits — done whenever a step produces a genuine
// new result.
func (l *Level) ClearStale() {
	if l.Out != nil {
		l.Out.Flags &^= cell.FlagStale | cell.FlagVoided
	}
}

// PushChild wires child under this Level (child.Prior = l) and stages it
// as the Level this Level wants the trampoline to run next.
func (l *Level) PushChild(child *Level) {
	child.Prior = l
	l.Child = child
}

// RegisterAPIHandle records an API cell handle allocated during this
// Level in APIHandles (spec.md §3.6, §6.1). The trampoline does not
// release these handles when the Level drops.
func (l *Level) RegisterAPIHandle(c *cell.Cell) {
	l.APIHandles = append(l.APIHandles, c)
}
