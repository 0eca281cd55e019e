// Package hostbridge realizes spec.md §6.1's "push, pop, suspend, resume
// for hosts that wish to drive the Trampoline themselves" as a WebSocket
// RPC surface (spec.md §5: "the connection itself is a SUSPEND
// boundary" — a remote host in a different process, or a different
// language entirely, drives one internal/api.Session per connection one
// command at a time). Grounded on the teacher's
// internal/network/websocket_server.go: the same server-side
// id-to-connection registry (WSServers/Clients, here Bridge.conns),
// the same mutex-guarded map access pattern, the same Upgrade/Close
// lifecycle from internal/network/websocket.go (the read loop runs inline
// in the HTTP handler), generalized from "relay opaque
// messages a Sentra script reads with WebSocketReceive" to "each message
// is one push/resume/suspend/close RPC command". Session identifiers use
// google/uuid rather than the teacher's time.Now().UnixNano() scheme,
// matching the rest of the pack's preference for collision-resistant
// IDs.
package hostbridge

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"evocore/internal/api"
	"evocore/internal/cell"
)

// WireValue is the JSON-safe cell encoding this bridge's RPC protocol
// uses. Only the scalar hearts a remote, differently-typed host can
// reasonably construct are supported — the same restriction
// internal/ctxstore applies to its row encoding, for the same reason: the
// values that make sense to hand across a process boundary are a small
// named subset of everything a Cell can hold.
type WireValue struct {
	Heart string `json:"heart"` // "integer", "text", "logic", "blank"
	Int   int64  `json:"int,omitempty"`
	Text  string `json:"text,omitempty"`
	Bool  bool   `json:"bool,omitempty"`
}

func (w WireValue) toCell() (cell.Cell, error) {
	switch w.Heart {
	case "integer":
		return api.Integer(w.Int), nil
	case "text":
		return api.Text(w.Text), nil
	case "logic":
		return api.Logic(w.Bool), nil
	case "blank":
		return api.Null(), nil
	default:
		return cell.Cell{}, fmt.Errorf("hostbridge: unsupported wire heart %q", w.Heart)
	}
}

func fromCell(c *cell.Cell) (WireValue, error) {
	switch c.Heart {
	case cell.HeartInteger:
		n, _ := c.Payload.First.(int64)
		return WireValue{Heart: "integer", Int: n}, nil
	case cell.HeartLogic:
		b, _ := c.Payload.First.(bool)
		return WireValue{Heart: "logic", Bool: b}, nil
	case cell.HeartBlank:
		return WireValue{Heart: "blank"}, nil
	case cell.HeartTextString:
		return WireValue{Heart: "text", Text: textOf(c)}, nil
	default:
		return WireValue{}, fmt.Errorf("hostbridge: result heart %s has no wire encoding", c.Heart)
	}
}

func textOf(c *cell.Cell) string {
	type byteser interface{ Bytes() ([]byte, error) }
	ser, ok := c.Payload.First.(byteser)
	if !ok {
		return ""
	}
	b, err := ser.Bytes()
	if err != nil {
		return ""
	}
	return string(b)
}

// Command is one RPC request a connected host sends.
//
//	push:    Program is spliced into a fresh Session, which starts
//	         running immediately (mirrors internal/api.Push + Resume).
//	resume:  Resume the connection's current Session.
//	suspend: Acknowledge a suspended Session without resuming it
//	         (internal/api.Session.Suspend is a no-op marker; the Level
//	         chain already stays parked in the Machine).
//	close:   Drop the session (internal/api.Session.Pop).
type Command struct {
	Op      string      `json:"op"`
	Program []WireValue `json:"program,omitempty"`
}

// Response is one RPC reply.
//
//	result:    the session ran to completion; Result holds the value. A
//	           close command also replies "result", with no Result.
//	suspended: the session hit a SUSPEND bounce, or a suspend command
//	           was acknowledged; call resume to continue.
//	error:     Error describes what went wrong; the session is unusable.
type Response struct {
	Op     string     `json:"op"`
	Result *WireValue `json:"result,omitempty"`
	Error  string     `json:"error,omitempty"`
}

// connection is one WebSocket client's server-side state: its own
// Session plus the connection-level bookkeeping the teacher's
// WebSocketConn carries (ID, the underlying *websocket.Conn, a closed
// flag guarded by its own mutex so Bridge's registry lock and a single
// connection's I/O lock never contend).
type connection struct {
	id      string
	conn    *websocket.Conn
	mu      sync.Mutex
	closed  bool
	session *api.Session
}

// Bridge is a WebSocket server exposing the Level-control RPC surface.
// One Bridge typically serves one embedding host process, the way one
// WebSocketServer served one NetworkModule's worth of clients in the
// teacher.
type Bridge struct {
	upgrader websocket.Upgrader
	server   *http.Server

	mu    sync.RWMutex
	conns map[string]*connection
}

// Listen starts a Bridge listening on addr, upgrading every inbound HTTP
// connection to a WebSocket and serving the push/resume/suspend/close RPC
// loop on it, mirroring WebSocketListen's "build the upgrader, wire the
// handler, start the HTTP server in the background" shape.
func Listen(addr string) (*Bridge, error) {
	b := &Bridge{
		conns: make(map[string]*connection),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", b.handleUpgrade)
	b.server = &http.Server{Addr: addr, Handler: mux}
	go b.server.ListenAndServe()

	return b, nil
}

// Close stops accepting new connections and closes every live one,
// mirroring WebSocketStopServer.
func (b *Bridge) Close() error {
	b.mu.Lock()
	conns := make([]*connection, 0, len(b.conns))
	for _, c := range b.conns {
		conns = append(conns, c)
	}
	b.conns = make(map[string]*connection)
	b.mu.Unlock()

	for _, c := range conns {
		c.mu.Lock()
		c.closed = true
		c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
		c.mu.Unlock()
	}
	return b.server.Close()
}

// Sessions lists the connection IDs currently registered, mirroring
// WebSocketGetClients.
func (b *Bridge) Sessions() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]string, 0, len(b.conns))
	for id := range b.conns {
		ids = append(ids, id)
	}
	return ids
}

// CloseSession disconnects one client by ID, mirroring
// WebSocketDisconnectClient.
func (b *Bridge) CloseSession(id string) error {
	b.mu.Lock()
	c, exists := b.conns[id]
	if exists {
		delete(b.conns, id)
	}
	b.mu.Unlock()
	if !exists {
		return fmt.Errorf("hostbridge: session %q not found", id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}

func (b *Bridge) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &connection{id: uuid.NewString(), conn: conn}

	b.mu.Lock()
	b.conns[c.id] = c
	b.mu.Unlock()

	b.serve(c)
}

// serve runs c's command loop until the connection closes. Each inbound
// Command is handled and replied to before the next read — the RPC is
// strictly request/response, unlike the teacher's fire-and-forget
// messagesCh relay, because push/resume/suspend/close only make sense as
// synchronous round trips against one session at a time.
func (b *Bridge) serve(c *connection) {
	defer func() {
		b.mu.Lock()
		delete(b.conns, c.id)
		b.mu.Unlock()
		c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd Command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			b.reply(c, Response{Op: "error", Error: err.Error()})
			continue
		}
		resp := b.handle(c, cmd)
		if !b.reply(c, resp) {
			return
		}
	}
}

func (b *Bridge) reply(c *connection, resp Response) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return false
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload) == nil
}

func (b *Bridge) handle(c *connection, cmd Command) Response {
	switch cmd.Op {
	case "push":
		cells := make([]cell.Cell, len(cmd.Program))
		for i, w := range cmd.Program {
			v, err := w.toCell()
			if err != nil {
				return Response{Op: "error", Error: err.Error()}
			}
			cells[i] = v
		}
		c.session = api.Push(cells...)
		return b.resume(c)

	case "resume":
		if c.session == nil {
			return Response{Op: "error", Error: "hostbridge: resume with no pushed session"}
		}
		return b.resume(c)

	case "suspend":
		if c.session == nil {
			return Response{Op: "error", Error: "hostbridge: suspend with no pushed session"}
		}
		c.session.Suspend()
		return Response{Op: "suspended"}

	case "close":
		if c.session != nil {
			c.session.Pop()
			c.session = nil
		}
		return Response{Op: "result"}

	default:
		return Response{Op: "error", Error: fmt.Sprintf("hostbridge: unknown op %q", cmd.Op)}
	}
}

func (b *Bridge) resume(c *connection) Response {
	result, suspended, err := c.session.Resume()
	if err != nil {
		return Response{Op: "error", Error: err.Error()}
	}
	if suspended {
		return Response{Op: "suspended"}
	}
	wire, err := fromCell(result)
	if err != nil {
		return Response{Op: "error", Error: err.Error()}
	}
	return Response{Op: "result", Result: &wire}
}
