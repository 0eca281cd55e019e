package ctx

import (
	"testing"

	"evocore/internal/cell"
)

func TestNewContextInvariant(t *testing.T) {
	keys := NewKeylist("a", "b")
	c, err := New(cell.HeartObject, keys, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Varlist.Len() != c.Keylist.Len()+1 {
		t.Fatalf("invariant violated: varlist=%d keylist=%d", c.Varlist.Len(), c.Keylist.Len())
	}
}

func TestGetAndSet(t *testing.T) {
	keys := NewKeylist("x")
	c, _ := New(cell.HeartObject, keys, nil)
	if err := c.Set("x", cell.Cell{Heart: cell.HeartInteger, Quote: cell.QuotePlain, Payload: cell.Payload{First: int64(7)}}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := c.Get("x")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v.Payload.First.(int64) != 7 {
		t.Fatalf("Get(x) = %v, want 7", v.Payload.First)
	}
}

func TestGetUnknownSymbolErrors(t *testing.T) {
	keys := NewKeylist("x")
	c, _ := New(cell.HeartObject, keys, nil)
	if _, err := c.Get("y"); err == nil {
		t.Fatalf("Get(y): want error, got nil")
	}
}

func TestGetCachedFallsBackOnMismatch(t *testing.T) {
	keys := NewKeylist("a", "b")
	c, _ := New(cell.HeartObject, keys, nil)
	_ = c.Set("b", cell.Cell{Heart: cell.HeartInteger, Quote: cell.QuotePlain, Payload: cell.Payload{First: int64(9)}})
	// Simulate a stale cached index (as if the context had grown/reordered).
	v, idx, err := c.GetCached("b", 1)
	if err != nil {
		t.Fatalf("GetCached: %v", err)
	}
	if idx != 2 {
		t.Fatalf("GetCached re-search index = %d, want 2", idx)
	}
	if v.Payload.First.(int64) != 9 {
		t.Fatalf("GetCached value = %v, want 9", v.Payload.First)
	}
}

func TestGrowAddsCompatibleDescendantKeylist(t *testing.T) {
	keys := NewKeylist("a")
	c, _ := New(cell.HeartObject, keys, nil)
	original := c.Keylist
	if err := c.Grow("b"); err != nil {
		t.Fatalf("Grow: %v", err)
	}
	if !c.Keylist.CompatibleWith(original) {
		t.Fatalf("grown keylist not compatible with its ancestor")
	}
	if c.Varlist.Len() != c.Keylist.Len()+1 {
		t.Fatalf("invariant violated after Grow")
	}
}

func TestArchetypeSlotZero(t *testing.T) {
	keys := NewKeylist()
	c, _ := New(cell.HeartFrame, keys, nil)
	arch, err := c.Archetype()
	if err != nil {
		t.Fatalf("Archetype: %v", err)
	}
	if arch.Heart != cell.HeartFrame {
		t.Fatalf("Archetype().Heart = %v, want frame", arch.Heart)
	}
}
