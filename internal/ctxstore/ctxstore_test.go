package ctxstore

import (
	"testing"

	"evocore/internal/cell"
	"evocore/internal/ctx"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func buildContext(t *testing.T) *ctx.Context {
	t.Helper()
	keys := ctx.NewKeylist("count", "label", "enabled")
	values := []cell.Cell{
		{Heart: cell.HeartInteger, Quote: cell.QuotePlain, Payload: cell.Payload{First: int64(42)}},
		textCellFrom("hello", cell.QuotePlain),
		{Heart: cell.HeartLogic, Quote: cell.QuotePlain, Payload: cell.Payload{First: true}},
	}
	c, err := ctx.New(cell.HeartObject, keys, values)
	if err != nil {
		t.Fatalf("building context: %v", err)
	}
	return c
}

func TestSaveAndLoadContextRoundTrips(t *testing.T) {
	s := openTestStore(t)
	c := buildContext(t)

	if err := s.SaveContext("config", c); err != nil {
		t.Fatalf("SaveContext: %v", err)
	}

	loaded, err := s.LoadContext("config")
	if err != nil {
		t.Fatalf("LoadContext: %v", err)
	}
	if loaded.Len() != c.Len() {
		t.Fatalf("loaded.Len() = %d, want %d", loaded.Len(), c.Len())
	}

	count, err := loaded.Get("count")
	if err != nil {
		t.Fatalf("Get(count): %v", err)
	}
	if got, _ := count.Payload.First.(int64); got != 42 {
		t.Fatalf("count = %v, want 42", got)
	}

	label, err := loaded.Get("label")
	if err != nil {
		t.Fatalf("Get(label): %v", err)
	}
	if got := textOf(label); got != "hello" {
		t.Fatalf("label = %q, want %q", got, "hello")
	}

	enabled, err := loaded.Get("enabled")
	if err != nil {
		t.Fatalf("Get(enabled): %v", err)
	}
	if got, _ := enabled.Payload.First.(bool); !got {
		t.Fatalf("enabled = %v, want true", got)
	}
}

func TestSaveContextOverwritesPriorRows(t *testing.T) {
	s := openTestStore(t)
	c := buildContext(t)
	if err := s.SaveContext("config", c); err != nil {
		t.Fatalf("SaveContext (first): %v", err)
	}

	keys := ctx.NewKeylist("count")
	values := []cell.Cell{{Heart: cell.HeartInteger, Quote: cell.QuotePlain, Payload: cell.Payload{First: int64(7)}}}
	shrunk, err := ctx.New(cell.HeartObject, keys, values)
	if err != nil {
		t.Fatalf("building shrunk context: %v", err)
	}
	if err := s.SaveContext("config", shrunk); err != nil {
		t.Fatalf("SaveContext (second): %v", err)
	}

	loaded, err := s.LoadContext("config")
	if err != nil {
		t.Fatalf("LoadContext: %v", err)
	}
	if loaded.Len() != 1 {
		t.Fatalf("loaded.Len() = %d, want 1 (stale slots from the first save must be gone)", loaded.Len())
	}
}

func TestSaveContextRejectsUnstorableHeart(t *testing.T) {
	s := openTestStore(t)
	keys := ctx.NewKeylist("fn")
	values := []cell.Cell{{Heart: cell.HeartAction, Quote: cell.QuotePlain}}
	c, err := ctx.New(cell.HeartObject, keys, values)
	if err != nil {
		t.Fatalf("building context: %v", err)
	}
	if err := s.SaveContext("bad", c); err == nil {
		t.Fatalf("SaveContext: expected an error for an ACTION! slot, got nil")
	}
}

func TestListAndDeleteContext(t *testing.T) {
	s := openTestStore(t)
	c := buildContext(t)
	if err := s.SaveContext("config", c); err != nil {
		t.Fatalf("SaveContext: %v", err)
	}

	names, err := s.ListContexts()
	if err != nil {
		t.Fatalf("ListContexts: %v", err)
	}
	if len(names) != 1 || names[0] != "config" {
		t.Fatalf("ListContexts = %v, want [config]", names)
	}

	if err := s.DeleteContext("config"); err != nil {
		t.Fatalf("DeleteContext: %v", err)
	}
	if _, err := s.LoadContext("config"); err == nil {
		t.Fatalf("LoadContext after delete: expected an error, got nil")
	}
}
