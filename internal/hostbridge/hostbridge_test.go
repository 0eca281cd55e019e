package hostbridge

import (
	"testing"

	"evocore/internal/action"
	"evocore/internal/api"
	"evocore/internal/bounce"
	"evocore/internal/cell"
	"evocore/internal/ctx"
	"evocore/internal/level"
)

// handle and resume never touch c.conn directly, so a connection with a
// nil *websocket.Conn exercises the RPC dispatch logic without a real
// socket.
func newTestConnection() *connection {
	return &connection{id: "test"}
}

func TestHandlePushRunsToCompletion(t *testing.T) {
	b := &Bridge{conns: make(map[string]*connection)}
	c := newTestConnection()

	resp := b.handle(c, Command{Op: "push", Program: []WireValue{{Heart: "integer", Int: 5}}})
	if resp.Op != "result" {
		t.Fatalf("resp.Op = %q, want result (err=%s)", resp.Op, resp.Error)
	}
	if resp.Result == nil || resp.Result.Int != 5 {
		t.Fatalf("resp.Result = %+v, want integer 5", resp.Result)
	}
}

func TestHandleResumeWithoutPushErrors(t *testing.T) {
	b := &Bridge{conns: make(map[string]*connection)}
	c := newTestConnection()

	resp := b.handle(c, Command{Op: "resume"})
	if resp.Op != "error" {
		t.Fatalf("resp.Op = %q, want error", resp.Op)
	}
}

func TestHandleUnknownOp(t *testing.T) {
	b := &Bridge{conns: make(map[string]*connection)}
	c := newTestConnection()

	resp := b.handle(c, Command{Op: "frobnicate"})
	if resp.Op != "error" {
		t.Fatalf("resp.Op = %q, want error", resp.Op)
	}
}

func buildSuspendOnceAction(t *testing.T, resumed *bool) cell.Cell {
	t.Helper()
	exemplar, err := ctx.New(cell.HeartObject, ctx.NewKeylist(), nil)
	if err != nil {
		t.Fatalf("building exemplar: %v", err)
	}
	a := action.New(exemplar, nil, nil, func(l *level.Level) bounce.Bounce {
		if !*resumed {
			*resumed = true
			return bounce.Suspend()
		}
		*l.Out = cell.Cell{Heart: cell.HeartInteger, Quote: cell.QuotePlain, Payload: cell.Payload{First: int64(99)}}
		return bounce.Value(l.Out)
	}, "suspend-once")
	return cell.Cell{Heart: cell.HeartAction, Quote: cell.QuotePlain, Payload: cell.Payload{First: a}}
}

// A push that suspends mid-program reports "suspended" and keeps the
// session alive on the connection for a later resume to pick back up
// (spec.md §6.1 push/suspend/resume realized as two RPC round trips).
func TestHandlePushThenResumeAcrossSuspend(t *testing.T) {
	resumed := false
	b := &Bridge{conns: make(map[string]*connection)}
	c := newTestConnection()

	suspendOnce := buildSuspendOnceAction(t, &resumed)
	c.session = api.Push(suspendOnce)

	resp := b.resume(c)
	if resp.Op != "suspended" {
		t.Fatalf("resp.Op = %q, want suspended (err=%s)", resp.Op, resp.Error)
	}

	resp = b.handle(c, Command{Op: "resume"})
	if resp.Op != "result" {
		t.Fatalf("resp.Op = %q, want result (err=%s)", resp.Op, resp.Error)
	}
	if resp.Result == nil || resp.Result.Int != 99 {
		t.Fatalf("resp.Result = %+v, want integer 99", resp.Result)
	}
}

func TestHandleClosePopsSession(t *testing.T) {
	b := &Bridge{conns: make(map[string]*connection)}
	c := newTestConnection()
	c.session = api.Push(cell.Cell{Heart: cell.HeartInteger, Quote: cell.QuotePlain, Payload: cell.Payload{First: int64(1)}})

	resp := b.handle(c, Command{Op: "close"})
	if resp.Op != "result" {
		t.Fatalf("resp.Op = %q, want result", resp.Op)
	}
	if c.session != nil {
		t.Fatalf("session still set after close")
	}
}
