package snapshot

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/llehouerou/artistmusic/internal/catalog"
	dbutil "github.com/llehouerou/artistmusic/internal/db"
)

const schema = `
	CREATE TABLE IF NOT EXISTS catalog_snapshot (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		data BLOB NOT NULL,
		saved_at INTEGER NOT NULL
	);
`

// SQLite stores the snapshot as a single row. Each save replaces the row
// inside a transaction.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// Verify SQLite implements catalog.Persister at compile time.
var _ catalog.Persister = (*SQLite)(nil)

// OpenSQLite opens the database at path and prepares the snapshot table.
func OpenSQLite(path string) (*SQLite, error) {
	conn, err := dbutil.Open(path)
	if err != nil {
		return nil, err
	}
	s, err := NewSQLite(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLite uses an already opened database.
func NewSQLite(conn *sql.DB) (*SQLite, error) {
	if _, err := conn.Exec(schema); err != nil {
		return nil, fmt.Errorf("init snapshot schema: %w", err)
	}
	return &SQLite{db: conn, now: time.Now}, nil
}

// Load returns the stored catalog, or nil when nothing was saved yet.
func (s *SQLite) Load() ([]catalog.Artist, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM catalog_snapshot WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return Decode(data)
}

// Save replaces the stored catalog.
func (s *SQLite) Save(artists []catalog.Artist) error {
	data, err := Encode(artists)
	if err != nil {
		return err
	}
	return dbutil.WithTx(s.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO catalog_snapshot (id, data, saved_at)
			VALUES (1, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				data = excluded.data,
				saved_at = excluded.saved_at
		`, data, s.now().Unix())
		return err
	})
}

// SavedAt returns when the snapshot was last written.
func (s *SQLite) SavedAt() (time.Time, error) {
	var ts int64
	err := s.db.QueryRow(`SELECT saved_at FROM catalog_snapshot WHERE id = 1`).Scan(&ts)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(ts, 0), nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
