// Package history keeps a SQLite log of evaluated lines.
package history

import (
	"fmt"
	"sync"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const schema = "CREATE TABLE IF NOT EXISTS entries (`id` INTEGER PRIMARY KEY, " +
	"`created_at` INTEGER NOT NULL, `source` TEXT NOT NULL, `outcome` TEXT NOT NULL, `ok` INTEGER NOT NULL);"

// Entry is one evaluated line and what came out of it.
type Entry struct {
	ID        int64
	CreatedAt time.Time
	Source    string
	Outcome   string
	OK        bool
}

// Log is safe for concurrent use.
type Log struct {
	mu   sync.Mutex
	conn *sqlite.Conn

	stmtInsert *sqlite.Stmt
	stmtRecent *sqlite.Stmt
}

// Open opens or creates the database at path.
func Open(path string) (*Log, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite|sqlite.OpenCreate)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}

	l := &Log{conn: conn}
	if err := l.prepare(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: prepare %s: %w", path, err)
	}

	return l, nil
}

func (l *Log) prepare() (err error) {
	if err = sqlitex.ExecuteTransient(l.conn, schema, nil); err != nil {
		return err
	}

	l.stmtInsert, err = l.conn.Prepare("INSERT INTO entries (`created_at`, `source`, `outcome`, `ok`) " +
		"VALUES ($created_at, $source, $outcome, $ok);")
	if err != nil {
		return err
	}

	l.stmtRecent, err = l.conn.Prepare("SELECT `id`, `created_at`, `source`, `outcome`, `ok` FROM entries " +
		"ORDER BY `id` DESC LIMIT $limit;")
	return err
}

// Record appends one line. outcome is whatever was printed for it,
// the store, a value or an error message.
func (l *Log) Record(source, outcome string, ok bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	defer l.stmtInsert.Reset()

	var okInt int64
	if ok {
		okInt = 1
	}

	l.stmtInsert.SetInt64("$created_at", time.Now().UnixMilli())
	l.stmtInsert.SetText("$source", source)
	l.stmtInsert.SetText("$outcome", outcome)
	l.stmtInsert.SetInt64("$ok", okInt)

	if _, err := l.stmtInsert.Step(); err != nil {
		return fmt.Errorf("history: record: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (l *Log) Recent(n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	defer l.stmtRecent.Reset()

	l.stmtRecent.SetInt64("$limit", int64(n))

	var ret []Entry
	for {
		hasRow, err := l.stmtRecent.Step()
		if err != nil {
			return nil, fmt.Errorf("history: recent: %w", err)
		}
		if !hasRow {
			break
		}

		ret = append(ret, Entry{
			ID:        l.stmtRecent.GetInt64("id"),
			CreatedAt: time.UnixMilli(l.stmtRecent.GetInt64("created_at")),
			Source:    l.stmtRecent.GetText("source"),
			Outcome:   l.stmtRecent.GetText("outcome"),
			OK:        l.stmtRecent.GetInt64("ok") != 0,
		})
	}

	return ret, nil
}

func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.stmtInsert.Finalize(); err != nil {
		return err
	}
	if err := l.stmtRecent.Finalize(); err != nil {
		return err
	}
	return l.conn.Close()
}
