package series

import (
	"testing"

	"evocore/internal/cell"
)

func TestArrayAppendAndAt(t *testing.T) {
	a := NewArray(2)
	if err := a.Append(cell.Cell{Heart: cell.HeartInteger, Quote: cell.QuotePlain}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	got, err := a.At(0)
	if err != nil {
		t.Fatalf("At(0): %v", err)
	}
	if got.Heart != cell.HeartInteger {
		t.Fatalf("At(0).Heart = %v, want integer", got.Heart)
	}
}

func TestAtRejectsOutOfRange(t *testing.T) {
	a := NewArray(1)
	_ = a.Append(cell.Cell{Heart: cell.HeartInteger, Quote: cell.QuotePlain})
	if _, err := a.At(-1); err == nil {
		t.Fatalf("At(-1): want error, got nil")
	}
	if _, err := a.At(1); err == nil {
		t.Fatalf("At(len): want error (raw series access, not feed end), got nil")
	}
}

func TestAppendRefusesIsotope(t *testing.T) {
	a := NewArray(1)
	isotope := cell.Cell{Heart: cell.HeartLogic, Quote: cell.QuoteIsotope}
	if err := a.Append(isotope); err == nil {
		t.Fatalf("Append(isotope): want error, got nil")
	}
}

func TestSetAtRefusesIsotope(t *testing.T) {
	a := NewArray(1)
	_ = a.Append(cell.Cell{Heart: cell.HeartInteger, Quote: cell.QuotePlain})
	isotope := cell.Cell{Heart: cell.HeartLogic, Quote: cell.QuoteIsotope}
	if err := a.SetAt(0, isotope); err == nil {
		t.Fatalf("SetAt(isotope): want error, got nil")
	}
}

func TestProtectedSeriesRefusesWrites(t *testing.T) {
	a := NewArray(1)
	_ = a.Append(cell.Cell{Heart: cell.HeartInteger, Quote: cell.QuotePlain})
	a.Protect()
	if err := a.SetAt(0, cell.Cell{Heart: cell.HeartInteger, Quote: cell.QuotePlain}); err != cell.ErrProtected {
		t.Fatalf("SetAt on protected series: got %v, want ErrProtected", err)
	}
	if err := a.Append(cell.Cell{Heart: cell.HeartInteger, Quote: cell.QuotePlain}); err != cell.ErrProtected {
		t.Fatalf("Append on protected series: got %v, want ErrProtected", err)
	}
}

func TestSingularSeriesHoldsOneCellInline(t *testing.T) {
	s := NewSingular(cell.Cell{Heart: cell.HeartWord})
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	if err := s.Append(cell.Cell{Heart: cell.HeartInteger, Quote: cell.QuotePlain}); err == nil {
		t.Fatalf("Append on singular: want fixed-capacity error, got nil")
	}
}

func TestPairingHoldsTwoCells(t *testing.T) {
	p := NewPairing(
		cell.Cell{Heart: cell.HeartInteger, Quote: cell.QuotePlain, Payload: cell.Payload{First: int64(1)}},
		cell.Cell{Heart: cell.HeartInteger, Quote: cell.QuotePlain, Payload: cell.Payload{First: int64(2)}},
	)
	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
	c1, _ := p.At(1)
	if c1.Payload.First.(int64) != 2 {
		t.Fatalf("pairing[1] = %v, want 2", c1.Payload.First)
	}
}

func TestBinaryAppendByteAndBytes(t *testing.T) {
	b := NewBinary(0)
	for _, by := range []byte("hi") {
		if err := b.AppendByte(by); err != nil {
			t.Fatalf("AppendByte: %v", err)
		}
	}
	got, err := b.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if string(got) != "hi" {
		t.Fatalf("Bytes() = %q, want %q", got, "hi")
	}
}
