package natives

import (
	"fmt"
	"io"

	"evocore/internal/action"
	"evocore/internal/bounce"
	"evocore/internal/cell"
	"evocore/internal/ctx"
	"evocore/internal/level"
	"evocore/internal/series"
)

// NewPrint builds the PRINT action: writes its argument's text form to w
// followed by a newline and returns an isotope of nothing (a "pure
// side-effect" result, matching the teacher's convention of reporting
// command success without a meaningful value). w is an explicit
// dependency rather than os.Stdout so tests can capture output and an
// embedding host can redirect it per spec.md §6.1.
func NewPrint(w io.Writer) *action.Action {
	exemplar, _ := ctx.New(cell.HeartObject, symKeys("value"), nil)
	params := []*action.Typeset{
		{Name: "value", Class: action.ParamNormal, Hearts: allTypeset()},
	}
	dispatcher := func(l *level.Level) bounce.Bounce {
		v, _ := l.Arg(1)
		fmt.Fprintln(w, formatCell(v))
		out := nullIsotope()
		if err := cell.Copy(l.Out, &out); err != nil {
			return bounce.Thrown(err)
		}
		return bounce.Value(l.Out)
	}
	return action.New(exemplar, params, []bool{false}, dispatcher, "print")
}

// formatCell renders a cell the way a host-facing PRINT would, without
// pulling in the full molder (out of scope per spec.md §1).
func formatCell(c *cell.Cell) string {
	switch c.Heart {
	case cell.HeartTextString:
		s, _ := c.Payload.First.(*series.Series)
		if s == nil {
			return ""
		}
		b, err := s.Bytes()
		if err != nil {
			return ""
		}
		return string(b)
	case cell.HeartInteger:
		n, _ := c.Payload.First.(int64)
		return fmt.Sprintf("%d", n)
	case cell.HeartLogic:
		b, _ := c.Payload.First.(bool)
		return fmt.Sprintf("%t", b)
	case cell.HeartBlank:
		return "none"
	default:
		return c.Heart.String()
	}
}
