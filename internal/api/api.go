// Package api implements the embedding API a host program links against
// (spec.md §6.1, §6.2): cell construction from host primitives,
// rebValue/rebElide/rebDid-style evaluation, and push/pop/suspend/resume
// Level control for a host that wants to drive the Trampoline itself.
// Grounded on the teacher's cmd/sentra/main.go, which builds a
// vm.NewVM(chunk)/vmregister.NewRegisterVM() and drives it to completion
// as the closest thing in the pack to a host embedding an interpreter and
// calling back into it — generalized here from "load a compiled script
// and run it" to the spec's narrower API-handle surface, since the
// scanner/lexer that would turn source text into a program is explicitly
// out of scope (spec.md §1).
package api

import (
	"evocore/internal/action"
	"evocore/internal/bounce"
	"evocore/internal/cell"
	"evocore/internal/ctx"
	"evocore/internal/executor"
	"evocore/internal/feed"
	"evocore/internal/level"
	"evocore/internal/series"
	"evocore/internal/trampoline"
)

// --- Cell construction (spec.md §6.1 "Cell construction from host
// primitives: integer, decimal, text, logic, null, block-from-array,
// action-from-function-pointer") ---

// Integer builds an INTEGER! cell.
func Integer(n int64) cell.Cell {
	return cell.Cell{Heart: cell.HeartInteger, Quote: cell.QuotePlain, Payload: cell.Payload{First: n}}
}

// Decimal builds a DECIMAL! cell.
func Decimal(f float64) cell.Cell {
	return cell.Cell{Heart: cell.HeartDecimal, Quote: cell.QuotePlain, Payload: cell.Payload{First: f}}
}

// Text builds a TEXT! cell backed by a fresh UTF-8 string series.
func Text(s string) cell.Cell {
	ser := series.NewString(len(s))
	for i := 0; i < len(s); i++ {
		_ = ser.AppendByte(s[i])
	}
	return cell.Cell{Heart: cell.HeartTextString, Quote: cell.QuotePlain, Payload: cell.Payload{First: ser}}
}

// Logic builds a LOGIC! cell.
func Logic(b bool) cell.Cell {
	return cell.Cell{Heart: cell.HeartLogic, Quote: cell.QuotePlain, Payload: cell.Payload{First: b}}
}

// Null builds the host-visible absence of a value (BLANK!, spec.md's
// "none"/falsy value — see GLOSSARY).
func Null() cell.Cell {
	return cell.Cell{Heart: cell.HeartBlank, Quote: cell.QuotePlain}
}

// BlockFrom wraps cells in a BLOCK! over a fresh array series.
func BlockFrom(cells ...cell.Cell) cell.Cell {
	arr := series.NewArray(len(cells))
	for _, c := range cells {
		_ = arr.Append(c)
	}
	return cell.Cell{Heart: cell.HeartBlock, Quote: cell.QuotePlain, Payload: cell.Payload{First: arr}}
}

// ActionFrom builds an action-from-function-pointer: a host-supplied Go
// function becomes a callable ACTION! cell, one ParamNormal/accept-any
// argument per name in paramNames. Hosts needing quoted/meta/variadic
// parameter classes build an *action.Action directly with internal/action
// instead; this is the common case the spec singles out by name.
func ActionFrom(label string, paramNames []string, fn action.Dispatcher) (cell.Cell, error) {
	symbols := make([]ctx.Symbol, len(paramNames))
	params := make([]*action.Typeset, len(paramNames))
	specialized := make([]bool, len(paramNames))
	for i, name := range paramNames {
		symbols[i] = ctx.Symbol(name)
		params[i] = &action.Typeset{Name: ctx.Symbol(name), Class: action.ParamNormal, Hearts: ^uint64(0)}
	}
	exemplar, err := ctx.New(cell.HeartObject, ctx.NewKeylist(symbols...), nil)
	if err != nil {
		return cell.Cell{}, err
	}
	a := action.New(exemplar, params, specialized, fn, label)
	return cell.Cell{Heart: cell.HeartAction, Quote: cell.QuotePlain, Payload: cell.Payload{First: a}}, nil
}

// --- Evaluation (spec.md §6.1 "rebValue/rebElide/rebDid") ---

// RebValue splices cells into a variadic feed and runs the Trampoline to
// completion, returning the managed result cell. Because there is no
// lexer in scope, the host supplies an already-structured program (the
// cells a scanner would otherwise have produced) rather than a source
// string.
func RebValue(cells ...cell.Cell) (*cell.Cell, error) {
	ptrs := make([]*cell.Cell, len(cells))
	for i := range cells {
		ptrs[i] = &cells[i]
	}
	var out cell.Cell
	top := level.New(feed.NewVariadicFeed(ptrs), &out, executor.ArrayExecutor)
	return trampoline.Run(top)
}

// RebElide runs cells for effect, discarding the result.
func RebElide(cells ...cell.Cell) error {
	_, err := RebValue(cells...)
	return err
}

// RebDid runs cells and returns host truthiness: BLANK! and LOGIC! false
// are the only falsy values (spec.md GLOSSARY), everything else is true.
func RebDid(cells ...cell.Cell) (bool, error) {
	result, err := RebValue(cells...)
	if err != nil {
		return false, err
	}
	return truthy(result), nil
}

func truthy(c *cell.Cell) bool {
	switch c.Heart {
	case cell.HeartBlank:
		return false
	case cell.HeartLogic:
		b, _ := c.Payload.First.(bool)
		return b
	default:
		return true
	}
}

// --- Level control (spec.md §6.1 "push, pop, suspend, resume for hosts
// that wish to drive the Trampoline themselves") ---

// Session is a host-driven evaluation the host steps through explicitly
// rather than running to completion in one call, built directly on
// internal/trampoline.Machine.
type Session struct {
	machine *trampoline.Machine
}

// Push starts a new Session over cells, without running anything yet —
// the host calls Resume to advance it.
func Push(cells ...cell.Cell) *Session {
	ptrs := make([]*cell.Cell, len(cells))
	for i := range cells {
		ptrs[i] = &cells[i]
	}
	var out cell.Cell
	top := level.New(feed.NewVariadicFeed(ptrs), &out, executor.ArrayExecutor)
	return &Session{machine: trampoline.NewMachine(top)}
}

// Resume drives the session until it completes or suspends again.
// suspended reports which happened; when true the session is still live
// and a later Resume call continues it (the Trampoline's "SUSPEND: return
// to host, preserve the chain", spec.md §4.4).
func (s *Session) Resume() (result *cell.Cell, suspended bool, err error) {
	return s.machine.Resume()
}

// Suspend is a courtesy no-op marker for hosts recording that they intend
// to stop driving a session for now: the chain is already preserved by
// Machine across calls, so there is nothing to tear down — a host simply
// stops calling Resume and calls it again later to pick the chain back
// up. Pop is likewise a no-op at this layer: dropping the Session value
// is sufficient since Machine holds no external resources.
func (s *Session) Suspend() {}

// Pop abandons the session. Present for symmetry with Push/Suspend/Resume
// (spec.md §6.1); a Session holds no resources beyond Go-GC'd Levels, so
// there is nothing to release explicitly.
func (s *Session) Pop() {}

// Done reports whether a prior Resume call finished the session (success
// or failure) rather than suspending.
func (s *Session) Done() bool { return s.machine.Finished() }

// SuspendBounce lets a host-authored native dispatcher (built with
// ActionFrom) yield control back to whatever Session is driving it,
// without importing internal/bounce directly.
func SuspendBounce() bounce.Bounce { return bounce.Suspend() }
