// Package ctxstore gives an embedding host a durable backing store for
// named top-level contexts (spec.md §3.3's varlist/keylist pairs are pure
// in-memory by design; a host that wants a persistent "object database" —
// configuration objects, session state surviving a restart — needs
// something to serialize them to). It mirrors the teacher's
// internal/database.DBManager: the same driver-name mapping over
// database/sql and the same connection-pool tuning, narrowed from
// DBManager's arbitrary-query surface to the one operation this store
// needs — save/load a Context's scalar slots as rows.
package ctxstore

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"evocore/internal/cell"
	"evocore/internal/ctx"
	"evocore/internal/rterror"
	"evocore/internal/series"
)

// Store owns one database/sql connection used as a context backing store.
// Safe for concurrent use; callers typically hold one Store per embedding
// host process, the way DBManager holds one manager per VM instance.
type Store struct {
	db     *sql.DB
	driver string
	mu     sync.Mutex
}

// driverName maps a host-facing database type name to the database/sql
// driver name it must register under, exactly as DBManager.Connect does
// (sqlite/sqlite3 -> sqlite, postgres/postgresql -> postgres, mysql ->
// mysql). Unlike the teacher's version, "sqlite"/"sqlite3" both resolve to
// modernc.org/sqlite's pure-Go driver rather than the cgo-based
// mattn/go-sqlite3, so embedding a host never needs a C toolchain.
func driverName(dbType string) (string, error) {
	switch dbType {
	case "sqlite", "sqlite3":
		return "sqlite", nil
	case "postgres", "postgresql":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	default:
		return "", fmt.Errorf("ctxstore: unsupported database type %q", dbType)
	}
}

// Open connects to dbType (sqlite/sqlite3, postgres/postgresql, mysql)
// using dsn, pings it, tunes the connection pool the way DBManager.Connect
// does, and ensures the backing schema exists.
func Open(dbType, dsn string) (*Store, error) {
	drv, err := driverName(dbType)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(drv, dsn)
	if err != nil {
		return nil, fmt.Errorf("ctxstore: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ctxstore: ping: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{db: db, driver: drv}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// rebind rewrites ?-style placeholders into the driver's native syntax.
// lib/pq only accepts $1, $2, ...; sqlite and go-sql-driver/mysql both
// accept plain ?, so only postgres needs rewriting. DBManager sidesteps
// this by passing scripts' raw queries straight through (the Sentra
// caller is expected to write driver-appropriate SQL); ctxstore issues
// its own fixed queries against all three drivers, so it rebinds once
// here instead of hand-writing three copies of every statement.
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		} else {
			b.WriteByte(query[i])
		}
	}
	return b.String()
}

func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS evocore_contexts (
			name TEXT PRIMARY KEY,
			archetype_heart INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS evocore_context_slots (
			context_name TEXT NOT NULL,
			slot_index INTEGER NOT NULL,
			symbol TEXT NOT NULL,
			heart INTEGER NOT NULL,
			quote INTEGER NOT NULL,
			int_value INTEGER,
			text_value TEXT,
			PRIMARY KEY (context_name, slot_index)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("ctxstore: schema: %w", err)
		}
	}
	return nil
}

// storable reports the cell Hearts this store knows how to serialize.
// A context holding an ACTION!, OBJECT!, BLOCK!, or other managed-node
// value is out of scope for this store — those are exactly the values a
// spec.md §3.3 context is free to hold in memory but that have no portable
// row encoding here, so SaveContext rejects them rather than silently
// dropping state a reload would then lack.
func storable(h cell.Heart) bool {
	switch h {
	case cell.HeartBlank, cell.HeartLogic, cell.HeartInteger, cell.HeartTextString, cell.HeartWord:
		return true
	default:
		return false
	}
}

// SaveContext persists c's keylist symbols and scalar slot values under
// name, replacing any prior rows for that name (a plain overwrite, not a
// merge — matching spec.md §3.3's context identity: the whole varlist is
// the state).
func (s *Store) SaveContext(name string, c *ctx.Context) error {
	for i := 0; i < c.Len(); i++ {
		v, err := c.Varlist.At(i + 1)
		if err != nil {
			return err
		}
		if !storable(v.Heart) {
			return rterror.New(rterror.TagBadBranchType,
				fmt.Sprintf("ctxstore: slot %d (%s) has no row encoding", i+1, v.Heart))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("ctxstore: begin: %w", err)
	}
	if err := s.saveContextTx(tx, name, c); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) saveContextTx(tx *sql.Tx, name string, c *ctx.Context) error {
	archetype, err := c.Archetype()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(s.rebind(`DELETE FROM evocore_context_slots WHERE context_name = ?`), name); err != nil {
		return fmt.Errorf("ctxstore: clearing old slots: %w", err)
	}
	if _, err := tx.Exec(s.rebind(`DELETE FROM evocore_contexts WHERE name = ?`), name); err != nil {
		return fmt.Errorf("ctxstore: clearing old context row: %w", err)
	}
	if _, err := tx.Exec(
		s.rebind(`INSERT INTO evocore_contexts (name, archetype_heart) VALUES (?, ?)`),
		name, int(archetype.Heart),
	); err != nil {
		return fmt.Errorf("ctxstore: inserting context row: %w", err)
	}

	for i, sym := range c.Keylist.Symbols {
		v, err := c.Varlist.At(i + 1)
		if err != nil {
			return err
		}
		intVal, textVal := encodeScalar(v)
		if _, err := tx.Exec(
			s.rebind(`INSERT INTO evocore_context_slots (context_name, slot_index, symbol, heart, quote, int_value, text_value)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`),
			name, i+1, string(sym), int(v.Heart), int(v.Quote), intVal, textVal,
		); err != nil {
			return fmt.Errorf("ctxstore: inserting slot %d: %w", i+1, err)
		}
	}
	return nil
}

// encodeScalar splits a storable cell's payload into the two nullable
// columns a row can hold: int_value carries HeartLogic/HeartInteger,
// text_value carries HeartTextString/HeartWord; HeartBlank uses neither.
func encodeScalar(c *cell.Cell) (intVal sql.NullInt64, textVal sql.NullString) {
	switch c.Heart {
	case cell.HeartLogic:
		b, _ := c.Payload.First.(bool)
		n := int64(0)
		if b {
			n = 1
		}
		return sql.NullInt64{Int64: n, Valid: true}, sql.NullString{}
	case cell.HeartInteger:
		n, _ := c.Payload.First.(int64)
		return sql.NullInt64{Int64: n, Valid: true}, sql.NullString{}
	case cell.HeartTextString:
		return sql.NullInt64{}, sql.NullString{String: textOf(c), Valid: true}
	case cell.HeartWord:
		sym, _ := c.Payload.First.(ctx.Symbol)
		return sql.NullInt64{}, sql.NullString{String: string(sym), Valid: true}
	default:
		return sql.NullInt64{}, sql.NullString{}
	}
}

func textOf(c *cell.Cell) string {
	ser, ok := c.Payload.First.(*series.Series)
	if !ok {
		return ""
	}
	b, err := ser.Bytes()
	if err != nil {
		return ""
	}
	return string(b)
}

// textCellFrom builds a HeartTextString cell backed by a fresh string
// series, the same construction natives.textVal uses.
func textCellFrom(s string, q cell.Quote) cell.Cell {
	ser := series.NewString(len(s))
	for i := 0; i < len(s); i++ {
		_ = ser.AppendByte(s[i])
	}
	return cell.Cell{Heart: cell.HeartTextString, Quote: q, Payload: cell.Payload{First: ser}}
}

// LoadContext rebuilds a Context from the rows saved under name.
func (s *Store) LoadContext(name string) (*ctx.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var archHeart int
	err := s.db.QueryRow(s.rebind(`SELECT archetype_heart FROM evocore_contexts WHERE name = ?`), name).Scan(&archHeart)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("ctxstore: no context named %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("ctxstore: loading context row: %w", err)
	}

	rows, err := s.db.Query(
		s.rebind(`SELECT slot_index, symbol, heart, quote, int_value, text_value
		 FROM evocore_context_slots WHERE context_name = ? ORDER BY slot_index ASC`), name)
	if err != nil {
		return nil, fmt.Errorf("ctxstore: loading slots: %w", err)
	}
	defer rows.Close()

	var symbols []ctx.Symbol
	var values []cell.Cell
	for rows.Next() {
		var idx, heart, quote int
		var symbol string
		var intVal sql.NullInt64
		var textVal sql.NullString
		if err := rows.Scan(&idx, &symbol, &heart, &quote, &intVal, &textVal); err != nil {
			return nil, fmt.Errorf("ctxstore: scanning slot: %w", err)
		}
		symbols = append(symbols, ctx.Symbol(symbol))
		values = append(values, decodeScalar(cell.Heart(heart), cell.Quote(quote), intVal, textVal))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	keys := ctx.NewKeylist(symbols...)
	return ctx.New(cell.Heart(archHeart), keys, values)
}

func decodeScalar(h cell.Heart, q cell.Quote, intVal sql.NullInt64, textVal sql.NullString) cell.Cell {
	switch h {
	case cell.HeartLogic:
		return cell.Cell{Heart: h, Quote: q, Payload: cell.Payload{First: intVal.Int64 != 0}}
	case cell.HeartInteger:
		return cell.Cell{Heart: h, Quote: q, Payload: cell.Payload{First: intVal.Int64}}
	case cell.HeartTextString:
		return textCellFrom(textVal.String, q)
	case cell.HeartWord:
		return cell.Cell{Heart: h, Quote: q, Payload: cell.Payload{First: ctx.Symbol(textVal.String)}}
	default:
		return cell.Cell{Heart: cell.HeartBlank, Quote: q}
	}
}

// ListContexts returns every context name currently saved, mirroring
// DBManager.ListConnections' inventory role.
func (s *Store) ListContexts() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT name FROM evocore_contexts ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("ctxstore: listing contexts: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteContext removes a saved context and its slots.
func (s *Store) DeleteContext(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("ctxstore: begin: %w", err)
	}
	if _, err := tx.Exec(s.rebind(`DELETE FROM evocore_context_slots WHERE context_name = ?`), name); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(s.rebind(`DELETE FROM evocore_contexts WHERE name = ?`), name); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
