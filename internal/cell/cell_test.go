package cell

import "testing"

func TestQuoteUnquoteRoundTrip(t *testing.T) {
	q := QuotePlain
	for i := 0; i < 60; i++ {
		q = q.Quoted()
	}
	for i := 0; i < 60; i++ {
		q = q.Unquoted()
	}
	if q != QuotePlain {
		t.Fatalf("round trip: got %v, want QuotePlain", q)
	}
}

func TestQuoteClassification(t *testing.T) {
	cases := []struct {
		q                        Quote
		isotope, plain, quoted, quasi bool
	}{
		{QuoteIsotope, true, false, false, false},
		{QuotePlain, false, true, false, false},
		{QuoteMinDepth, false, false, true, false},
		{QuoteMaxDepth, false, false, true, false},
		{QuasiBase, false, false, false, true},
		{QuasiMax, false, false, false, true},
	}
	for _, c := range cases {
		if got := c.q.IsIsotope(); got != c.isotope {
			t.Errorf("Quote(%d).IsIsotope() = %v, want %v", c.q, got, c.isotope)
		}
		if got := c.q.IsPlain(); got != c.plain {
			t.Errorf("Quote(%d).IsPlain() = %v, want %v", c.q, got, c.plain)
		}
		if got := c.q.IsQuoted(); got != c.quoted {
			t.Errorf("Quote(%d).IsQuoted() = %v, want %v", c.q, got, c.quoted)
		}
		if got := c.q.IsQuasi(); got != c.quasi {
			t.Errorf("Quote(%d).IsQuasi() = %v, want %v", c.q, got, c.quasi)
		}
	}
}

func TestCopyCellIdentity(t *testing.T) {
	src := Cell{Heart: HeartInteger, Quote: QuotePlain, Payload: Payload{First: int64(42)}}
	var dst Cell
	if err := Copy(&dst, &src); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if !Equals(&dst, &src) {
		t.Fatalf("copy-cell identity violated: dst=%+v src=%+v", dst, src)
	}
}

func TestCopyRefusesProtectedDestination(t *testing.T) {
	src := Cell{Heart: HeartInteger, Quote: QuotePlain, Payload: Payload{First: int64(1)}}
	dst := Cell{Flags: FlagProtected}
	if err := Copy(&dst, &src); err != ErrProtected {
		t.Fatalf("Copy into protected cell: got %v, want ErrProtected", err)
	}
}

func TestResetPreservesPersistFlags(t *testing.T) {
	c := Cell{Heart: HeartInteger, Quote: QuotePlain, Flags: FlagProtected}
	c.Reset()
	if !c.Protected() {
		t.Fatalf("Reset dropped PersistMask flag FlagProtected")
	}
	if c.Heart != HeartBlank || c.Payload != (Payload{}) {
		t.Fatalf("Reset did not clear non-persisted state: %+v", c)
	}
}

func TestFreshIsDistinctFromAnyInitializedCell(t *testing.T) {
	fresh := Fresh()
	if !fresh.IsFresh() {
		t.Fatalf("Fresh() not reported fresh")
	}
	initialized := Cell{Heart: HeartBlank, Quote: QuotePlain}
	if initialized.IsFresh() {
		t.Fatalf("an initialized blank! cell must not read as fresh (quote differs)")
	}
}

func TestVarTypeCollapsesDeepQuoteToQuoted(t *testing.T) {
	c := Cell{Heart: HeartInteger, Quote: QuoteMinDepth + 1}
	if got := c.VarType(); got != HeartQuoted {
		t.Fatalf("VarType() = %v, want HeartQuoted", got)
	}
	plain := Cell{Heart: HeartInteger, Quote: QuotePlain}
	if got := plain.VarType(); got != HeartInteger {
		t.Fatalf("VarType() = %v, want HeartInteger", got)
	}
}
