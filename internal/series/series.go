// Package series implements the evaluator's heap-managed, length-bearing
// sequence type: the backing store for arrays (of cells), binaries (of
// bytes), and strings (of UTF-8 bytes — the string's bookmark-index cache
// itself is out of scope per spec.md §1 and is referenced only through the
// Link side-band slot below).
package series

import (
	"evocore/internal/cell"
	"evocore/internal/rterror"
)

// Flavor fixes how a Series' side-band slots (Link, Misc, Bonus) and
// backing storage are interpreted. The side-band slots are exported
// fields read and written directly; no accessor checks the flavor before
// a read.
type Flavor byte

const (
	FlavorArray Flavor = iota
	FlavorBinary
	FlavorString
	FlavorKeylist
	FlavorVarlist
	FlavorDetails
	FlavorPairing
	FlavorBookmark
	FlavorFeed
)

func (f Flavor) String() string {
	switch f {
	case FlavorArray:
		return "array"
	case FlavorBinary:
		return "binary"
	case FlavorString:
		return "string"
	case FlavorKeylist:
		return "keylist"
	case FlavorVarlist:
		return "varlist"
	case FlavorDetails:
		return "details"
	case FlavorPairing:
		return "pairing"
	case FlavorBookmark:
		return "bookmark"
	case FlavorFeed:
		return "feed"
	default:
		return "unknown-flavor"
	}
}

// Series is the heap-managed resizable sequence. Singular series (Flavor
// holds exactly one cell) keep that cell inline in singularCell rather
// than allocating a backing slice, mirroring the spec's space
// optimization; Pairing holds exactly two.
type Series struct {
	Flavor Flavor

	cells []cell.Cell // used when Flavor is a cell-bearing flavor
	bytes []byte      // used when Flavor is FlavorBinary/FlavorString

	singular     bool
	singularCell cell.Cell
	pairing      bool
	pairCells    [2]cell.Cell

	used int
	rest int

	// Side-band slots; interpretation fixed by Flavor (see spec.md §4.2).
	Link  any
	Misc  any
	Bonus any

	managed   bool
	protected bool
}

// NewArray creates an empty array series with the given initial capacity.
func NewArray(capacity int) *Series {
	if capacity < 0 {
		capacity = 0
	}
	return &Series{
		Flavor: FlavorArray,
		cells:  make([]cell.Cell, 0, capacity),
		rest:   capacity,
	}
}

// NewSingular creates a capacity-1 array whose one cell lives inline in
// the stub (no separate backing allocation).
func NewSingular(c cell.Cell) *Series {
	return &Series{
		Flavor:       FlavorArray,
		singular:     true,
		singularCell: c,
		used:         1,
		rest:         1,
	}
}

// NewPairing creates a two-cell inline series (used for PAIR! and for the
// archetype+value pattern some bindings need without a full array).
func NewPairing(a, b cell.Cell) *Series {
	return &Series{
		Flavor:    FlavorPairing,
		pairing:   true,
		pairCells: [2]cell.Cell{a, b},
		used:      2,
		rest:      2,
	}
}

// NewBinary creates an empty binary series.
func NewBinary(capacity int) *Series {
	if capacity < 0 {
		capacity = 0
	}
	return &Series{Flavor: FlavorBinary, bytes: make([]byte, 0, capacity), rest: capacity}
}

// NewString creates an empty UTF-8 string series.
func NewString(capacity int) *Series {
	if capacity < 0 {
		capacity = 0
	}
	return &Series{Flavor: FlavorString, bytes: make([]byte, 0, capacity), rest: capacity}
}

// Len returns the used count.
func (s *Series) Len() int { return s.used }

// Rest returns the capacity.
func (s *Series) Rest() int { return s.rest }

// Managed reports whether the GC has taken ownership of this series.
func (s *Series) Managed() bool { return s.managed }

// Manage marks the series GC-managed (idempotent). The actual mark/sweep
// walk is an external collaborator referenced only through this
// interface; see spec.md §1 Out of scope.
func (s *Series) Manage() { s.managed = true }

// Protect marks every future write to the series as refused.
func (s *Series) Protect() { s.protected = true }

// Protected reports whether writes are refused.
func (s *Series) Protected() bool { return s.protected }

// At returns a pointer to the cell at index i. Per spec.md §8, index -1 or
// index >= Len() raises Error_Index_Out_Of_Range; index == Len() itself is
// a valid request only through Feed's end-of-feed check, never through At.
func (s *Series) At(i int) (*cell.Cell, error) {
	if i < 0 || i >= s.used {
		return nil, rterror.IndexOutOfRange(i, s.used)
	}
	if s.singular {
		return &s.singularCell, nil
	}
	if s.pairing {
		return &s.pairCells[i], nil
	}
	return &s.cells[i], nil
}

// SetAt writes c into slot i, refusing isotopes (they may never live in an
// array) and refusing writes to a protected series.
func (s *Series) SetAt(i int, c cell.Cell) error {
	if s.protected {
		return cell.ErrProtected
	}
	if c.Quote.IsIsotope() {
		return rterror.IsotopeInArray(c.Heart)
	}
	target, err := s.At(i)
	if err != nil {
		return err
	}
	*target = c
	return nil
}

// Append adds c to the end of an array/keylist/varlist/details series.
// Isotopes are refused for the same reason as SetAt.
func (s *Series) Append(c cell.Cell) error {
	if s.protected {
		return cell.ErrProtected
	}
	if c.Quote.IsIsotope() {
		return rterror.IsotopeInArray(c.Heart)
	}
	if s.singular || s.pairing {
		return rterror.FixedCapacity(s.Flavor.String())
	}
	s.cells = append(s.cells, c)
	s.used++
	if s.used > s.rest {
		s.rest = s.used
	}
	return nil
}

// AppendByte adds b to the end of a binary/string series.
func (s *Series) AppendByte(b byte) error {
	if s.protected {
		return cell.ErrProtected
	}
	if s.Flavor != FlavorBinary && s.Flavor != FlavorString {
		return rterror.WrongFlavor(s.Flavor.String(), "binary-or-string")
	}
	s.bytes = append(s.bytes, b)
	s.used++
	if s.used > s.rest {
		s.rest = s.used
	}
	return nil
}

// Bytes returns the raw byte backing of a binary/string series.
func (s *Series) Bytes() ([]byte, error) {
	if s.Flavor != FlavorBinary && s.Flavor != FlavorString {
		return nil, rterror.WrongFlavor(s.Flavor.String(), "binary-or-string")
	}
	return s.bytes, nil
}

// Cells returns the live cell backing for iteration. Callers must not
// retain the slice across a Bounce that may push a sub-Level: a sub-Level
// may trigger relocation of dynamic arrays (spec.md §5), so raw pointers
// are only valid for a single evaluator step.
func (s *Series) Cells() []cell.Cell {
	if s.singular {
		return []cell.Cell{s.singularCell}
	}
	if s.pairing {
		return s.pairCells[:]
	}
	return s.cells
}

// Truncate drops the series to length n (n <= Len()).
func (s *Series) Truncate(n int) error {
	if s.protected {
		return cell.ErrProtected
	}
	if n < 0 || n > s.used {
		return rterror.IndexOutOfRange(n, s.used)
	}
	if !s.singular && !s.pairing {
		s.cells = s.cells[:n]
	}
	s.used = n
	return nil
}

// Mark is the GC hook: a precise collector would descend through every
// node-carrying payload/extra slot from here. The real mark/sweep walk is
// out of scope (spec.md §1); this method gives a root-set walker a single
// place to call. No package in this module calls it.
func (s *Series) Mark(visit func(any)) {
	for _, c := range s.Cells() {
		if c.Flags&cell.FlagFirstIsNode != 0 {
			visit(c.Payload.First)
		}
		if c.Flags&cell.FlagSecondIsNode != 0 {
			visit(c.Payload.Second)
		}
		if b, ok := c.Extra.(cell.Binding); ok {
			visit(b)
		}
	}
}
