// Package bounce implements the small sentinel vocabulary executors and
// native dispatchers use to tell the trampoline what to do next
// (spec.md §4.6, §9, C9).
//
// The spec disambiguates an ordinary cell result from a sentinel by a
// synthetic heart byte (RETURN_SIGNAL) so both fit in one pointer-shaped
// word — an encoding trick for a C host that has no tagged-union type. Go
// already has one (a struct with a Kind discriminant is exactly as cheap
// to branch on as a heart-byte comparison), so Bounce is a small struct
// rather than a raw pointer; the *observable* protocol — the same nine
// cases, the same propagation rules — is unchanged.
package bounce

import "evocore/internal/cell"

// Kind names which of the bounce.Bounce cases this value represents.
type Kind int

const (
	// KindValue: a finished result; trampoline drops the Level and uses
	// Value as its output.
	KindValue Kind = iota
	// KindThrown: thrown-state active; check Err (a *rterror.RuntimeError
	// with Category == CategoryThrown).
	KindThrown
	// KindVoid: the step produced no output; OUT keeps its prior contents
	// but is marked stale+voided.
	KindVoid
	// KindRedoChecked: re-enter the same Level's dispatcher, re-running
	// typecheck first.
	KindRedoChecked
	// KindRedoUnchecked: re-enter the same Level's dispatcher with no
	// recheck.
	KindRedoUnchecked
	// KindContinue: a sub-Level was pushed (via Level.Child); when it
	// finishes, re-enter this Level's executor.
	KindContinue
	// KindDelegate: sub-Level pushed; when it finishes, its result *is*
	// this Level's result (no callback to this executor).
	KindDelegate
	// KindSuspend: yield back to the host; the Level chain is preserved.
	KindSuspend
	// KindUnhandled: generic-dispatch fallthrough; the caller turns this
	// into a typed error.
	KindUnhandled
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindThrown:
		return "thrown"
	case KindVoid:
		return "void"
	case KindRedoChecked:
		return "redo-checked"
	case KindRedoUnchecked:
		return "redo-unchecked"
	case KindContinue:
		return "continue"
	case KindDelegate:
		return "delegate"
	case KindSuspend:
		return "suspend"
	case KindUnhandled:
		return "unhandled"
	default:
		return "unknown-bounce-kind"
	}
}

// Bounce is the sentinel-or-value return of an executor or dispatcher.
type Bounce struct {
	Kind  Kind
	Value *cell.Cell // set iff Kind == KindValue
	Err   error       // set iff Kind == KindThrown or KindUnhandled
}

func Value(c *cell.Cell) Bounce        { return Bounce{Kind: KindValue, Value: c} }
func Thrown(err error) Bounce          { return Bounce{Kind: KindThrown, Err: err} }
func Void() Bounce                     { return Bounce{Kind: KindVoid} }
func RedoChecked() Bounce              { return Bounce{Kind: KindRedoChecked} }
func RedoUnchecked() Bounce            { return Bounce{Kind: KindRedoUnchecked} }
func Continue() Bounce                 { return Bounce{Kind: KindContinue} }
func Delegate() Bounce                 { return Bounce{Kind: KindDelegate} }
func Suspend() Bounce                  { return Bounce{Kind: KindSuspend} }
func Unhandled(err error) Bounce       { return Bounce{Kind: KindUnhandled, Err: err} }

// IsSentinel reports whether b is anything other than a finished value —
// the Go equivalent of checking the synthetic RETURN_SIGNAL heart.
func (b Bounce) IsSentinel() bool { return b.Kind != KindValue }
