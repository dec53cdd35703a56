package archive

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	perr "github.com/matzehuels/plotmsg/pkg/errors"
	"github.com/matzehuels/plotmsg/pkg/observability"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS records (
  key         TEXT PRIMARY KEY,
  received_at TEXT NOT NULL,
  source      TEXT NOT NULL,
  payload     BLOB NOT NULL
);`

// SQLiteStore keeps records in one SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates if needed) the database at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, perr.New(perr.ErrCodeInvalidConfig, "sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, perr.Wrap(perr.ErrCodeInternal, err, "create sqlite directory")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, perr.Wrap(perr.ErrCodeInternal, err, "open sqlite")
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(pctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, perr.Wrap(perr.ErrCodeInternal, err, "set busy_timeout")
	}
	if _, err := db.ExecContext(pctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, perr.Wrap(perr.ErrCodeInternal, err, "create records table")
	}
	return &SQLiteStore{db: db}, nil
}

// Put stores rec, replacing any record with the same key.
func (s *SQLiteStore) Put(ctx context.Context, rec Record) (string, error) {
	rec, err := prepare(rec)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO records (key, received_at, source, payload) VALUES (?, ?, ?, ?)`,
		rec.Key, rec.ReceivedAt.UTC().Format(time.RFC3339Nano), rec.Source, rec.Payload,
	)
	if err != nil {
		return "", perr.Wrap(perr.ErrCodeInternal, err, "insert record %s", rec.Key)
	}
	observability.Archive().OnArchivePut(ctx, BackendSQLite, len(rec.Payload))
	return rec.Key, nil
}

// Get returns the record for key.
func (s *SQLiteStore) Get(ctx context.Context, key string) (Record, error) {
	if err := checkKey(key, false); err != nil {
		return Record{}, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT key, received_at, source, payload FROM records WHERE key = ?`, key)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		observability.Archive().OnArchiveMiss(ctx, BackendSQLite)
		return Record{}, notFound(key)
	}
	if err != nil {
		return Record{}, perr.Wrap(perr.ErrCodeInternal, err, "read record %s", key)
	}
	observability.Archive().OnArchiveHit(ctx, BackendSQLite)
	return rec, nil
}

// List returns every record, oldest first.
func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, received_at, source, payload FROM records ORDER BY received_at, key`)
	if err != nil {
		return nil, perr.Wrap(perr.ErrCodeInternal, err, "list records")
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, perr.Wrap(perr.ErrCodeInternal, err, "scan record")
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.Wrap(perr.ErrCodeInternal, err, "list records")
	}
	sortRecords(recs)
	return recs, nil
}

// Delete removes key.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if err := checkKey(key, false); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key); err != nil {
		return perr.Wrap(perr.ErrCodeInternal, err, "delete record %s", key)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec Record
		at  string
	)
	if err := row.Scan(&rec.Key, &at, &rec.Source, &rec.Payload); err != nil {
		return Record{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return Record{}, err
	}
	rec.ReceivedAt = t
	return rec, nil
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
