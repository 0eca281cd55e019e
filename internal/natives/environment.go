package natives

import (
	"io"

	"evocore/internal/action"
	"evocore/internal/bind"
	"evocore/internal/cell"
	"evocore/internal/ctx"
)

// NewLibrary builds a Context binding every native in this package to its
// conventional name, the way a host's "lib" module would after loading
// built-ins (spec.md §4.7 step 4 describes module attachment for exactly
// this kind of top-level name). Callers bind a WORD! into the result with
// Bind before handing a program to the evaluator.
func NewLibrary(w io.Writer) (*ctx.Context, error) {
	entries := []struct {
		name ctx.Symbol
		cell cell.Cell
	}{
		{"+", actionCell(NewAdd())},
		{"*", actionCell(NewMultiply())},
		{"equal?", actionCell(NewEqual())},
		{"if", actionCell(NewIf())},
		{"else", actionCell(NewElse())},
		{"do", actionCell(NewDo())},
		{"reduce", actionCell(NewReduce())},
		{"all", actionCell(NewAll())},
		{"elide", actionCell(NewElide())},
		{"comment", actionCell(NewComment())},
		{"catch", actionCell(NewCatch())},
		{"throw", actionCell(NewThrow())},
		{"print", actionCell(NewPrint(w))},
	}
	names := make([]ctx.Symbol, len(entries))
	values := make([]cell.Cell, len(entries))
	for i, e := range entries {
		names[i] = e.name
		values[i] = e.cell
	}
	return ctx.New(cell.HeartObject, ctx.NewKeylist(names...), values)
}

func actionCell(a *action.Action) cell.Cell {
	return cell.Cell{Heart: cell.HeartAction, Quote: cell.QuotePlain, Payload: cell.Payload{First: a}}
}

// Bind returns a function that attaches word to lib — the binder
// argument wordVal (helpers.go, used by this package's own tests) takes.
func Bind(lib *ctx.Context) func(*cell.Cell) {
	return func(w *cell.Cell) {
		bind.BindWordToContext(w, lib)
	}
}
