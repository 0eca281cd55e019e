// Package natives implements a handful of demonstration built-in actions
// (ADD, MULTIPLY, EQUAL?, IF, ELSE, DO, THROW, CATCH, REDUCE, ELIDE,
// COMMENT, ALL, PRINT) exercising the end-to-end scenarios spec.md §8
// describes. There is no lexer/parser in scope (spec.md §1), so callers
// build the cell/array trees these natives run over by hand, the way the
// package's own tests do.
package natives

import (
	"evocore/internal/cell"
	"evocore/internal/ctx"
	"evocore/internal/series"
)

func allTypeset() uint64 { return ^uint64(0) }

func intVal(n int64) cell.Cell {
	return cell.Cell{Heart: cell.HeartInteger, Quote: cell.QuotePlain, Payload: cell.Payload{First: n}}
}

func asInt(c *cell.Cell) (int64, bool) {
	if c.Heart != cell.HeartInteger {
		return 0, false
	}
	n, ok := c.Payload.First.(int64)
	return n, ok
}

func logicVal(b bool) cell.Cell {
	return cell.Cell{Heart: cell.HeartLogic, Quote: cell.QuotePlain, Payload: cell.Payload{First: b}}
}

func blankVal() cell.Cell {
	return cell.Cell{Heart: cell.HeartBlank, Quote: cell.QuotePlain}
}

// nullIsotope is the "heavy null" a false IF's untaken branch produces,
// and what ELSE inspects (through its meta-lifted left parameter) to
// decide whether to run its own branch (spec.md §8 scenario 2).
func nullIsotope() cell.Cell {
	return cell.Cell{Heart: cell.HeartBlank, Quote: cell.QuoteIsotope}
}

// isQuasiNull reports whether c is the meta-lifted (quasi) form of
// nullIsotope — what a Meta-class parameter sees after an isotope null
// argument is fulfilled.
func isQuasiNull(c *cell.Cell) bool {
	return c.Heart == cell.HeartBlank && c.Quote.IsQuasi()
}

// truthy implements the evaluator's only two falsy values: blank (none)
// and the logic value false. Everything else, including 0 and "", is
// truthy, matching the Rebol family's convention.
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

func symKeys(names ...ctx.Symbol) *ctx.Keylist { return ctx.NewKeylist(names...) }

// textVal builds a TEXT! cell backed by a fresh string series — a
// convenience for tests, which have no lexer to produce one from source.
func textVal(s string) cell.Cell {
	ser := series.NewString(len(s))
	for i := 0; i < len(s); i++ {
		_ = ser.AppendByte(s[i])
	}
	return cell.Cell{Heart: cell.HeartTextString, Quote: cell.QuotePlain, Payload: cell.Payload{First: ser}}
}

// blockVal wraps cells in a BLOCK! cell over a fresh array series.
func blockVal(cells ...cell.Cell) cell.Cell {
	arr := series.NewArray(len(cells))
	for _, c := range cells {
		_ = arr.Append(c)
	}
	return cell.Cell{Heart: cell.HeartBlock, Quote: cell.QuotePlain, Payload: cell.Payload{First: arr}}
}

// groupVal wraps cells in a GROUP! cell over a fresh array series.
func groupVal(cells ...cell.Cell) cell.Cell {
	arr := series.NewArray(len(cells))
	for _, c := range cells {
		_ = arr.Append(c)
	}
	return cell.Cell{Heart: cell.HeartGroup, Quote: cell.QuotePlain, Payload: cell.Payload{First: arr}}
}

// wordVal builds a WORD! cell naming sym, bound by binder (when non-nil)
// so the evaluator can resolve it (spec.md §4.7).
func wordVal(sym ctx.Symbol, binder func(*cell.Cell)) cell.Cell {
	w := cell.Cell{Heart: cell.HeartWord, Quote: cell.QuotePlain, Payload: cell.Payload{First: sym}}
	if binder != nil {
		binder(&w)
	}
	return w
}

// unboundWordVal builds a bare WORD! cell with no binding (for hard-quoted
// "literal name" positions like THROW's name argument).
func unboundWordVal(sym ctx.Symbol) cell.Cell {
	return cell.Cell{Heart: cell.HeartWord, Quote: cell.QuotePlain, Payload: cell.Payload{First: sym}}
}
