// Package journal persists dispatched operations to a local SQLite database
// for later inspection. Writes go through a single background goroutine so
// recording never blocks a dispatch.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/voxelforge/gdmc-bridge/bridge"
)

const schema = `
CREATE TABLE IF NOT EXISTS operations (
	id          TEXT PRIMARY KEY,
	op          TEXT NOT NULL,
	args        TEXT,
	kind        TEXT NOT NULL DEFAULT '',
	ok          INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	at          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_operations_at ON operations(at DESC);
`

// Entry is one journaled operation as read back by Recent.
type Entry struct {
	ID         string         `json:"id"`
	Op         string         `json:"op"`
	Args       map[string]any `json:"args,omitempty"`
	Kind       string         `json:"kind,omitempty"`
	OK         bool           `json:"ok"`
	DurationMS int64          `json:"duration_ms"`
	At         time.Time      `json:"at"`
}

// Journal records dispatched operations into SQLite. It satisfies
// bridge.Recorder.
type Journal struct {
	db        *sql.DB
	writes    chan bridge.Event
	done      chan struct{}
	closeOnce sync.Once
}

// Open creates or opens the journal database at path and starts the write
// loop.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}
	// Single connection keeps the WAL writer uncontended.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}

	j := &Journal{
		db:     db,
		writes: make(chan bridge.Event, 256),
		done:   make(chan struct{}),
	}
	go j.writeLoop()
	return j, nil
}

func (j *Journal) writeLoop() {
	defer close(j.done)
	for e := range j.writes {
		if err := j.insert(e); err != nil {
			log.Printf("Error journaling operation %s: %v", e.Op, err)
		}
	}
}

func (j *Journal) insert(e bridge.Event) error {
	var args any
	if e.Args != nil {
		encoded, err := json.Marshal(e.Args)
		if err == nil {
			args = string(encoded)
		}
	}
	ok := 0
	if e.OK {
		ok = 1
	}
	_, err := j.db.Exec(
		`INSERT INTO operations (id, op, args, kind, ok, duration_ms, at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Op, args, e.Kind, ok, e.Duration.Milliseconds(), time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// Record implements bridge.Recorder. When the write queue is full the event
// is dropped rather than stalling the dispatch path.
func (j *Journal) Record(e bridge.Event) {
	select {
	case j.writes <- e:
	default:
		log.Printf("Journal queue full, dropping record for %s", e.Op)
	}
}

// Recent returns the newest n journal entries, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = 50
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, op, args, kind, ok, duration_ms, at FROM operations ORDER BY at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e    Entry
			args sql.NullString
			ok   int
			at   string
		)
		if err := rows.Scan(&e.ID, &e.Op, &args, &e.Kind, &ok, &e.DurationMS, &at); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		e.OK = ok == 1
		if args.Valid && args.String != "" {
			json.Unmarshal([]byte(args.String), &e.Args)
		}
		if parsed, err := time.Parse(time.RFC3339Nano, at); err == nil {
			e.At = parsed
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close drains pending writes and closes the database.
func (j *Journal) Close() error {
	var err error
	j.closeOnce.Do(func() {
		close(j.writes)
		<-j.done
		err = j.db.Close()
	})
	return err
}
