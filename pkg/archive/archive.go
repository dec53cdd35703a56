// Package archive stores received plot messages so they can be inspected
// and replayed later.
//
// Records are content-addressed: the key of a record is the BLAKE3 digest
// of its payload (see wire.Digest), so storing the same message twice keeps
// one copy. Three backends implement [Store]:
//
//   - [FileStore]: one msgpack file per record under hashed sub-directories
//   - [SQLiteStore]: a single SQLite database file
//   - [NullStore]: discards everything, for when recording is off
package archive

import (
	"context"
	"slices"
	"strings"
	"time"

	perr "github.com/matzehuels/plotmsg/pkg/errors"
	"github.com/matzehuels/plotmsg/pkg/wire"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendNull   = "none"
)

// ErrNotFound is returned for keys that are not in the store. Every
// not-found error matches it with errors.Is.
var ErrNotFound = perr.New(perr.ErrCodeNotFound, "record not found")

// Record is one archived message.
type Record struct {
	Key        string    `msgpack:"key"`
	ReceivedAt time.Time `msgpack:"received_at"`
	Source     string    `msgpack:"source"`
	Payload    []byte    `msgpack:"payload"`
}

// NewRecord returns a Record for payload received now from source.
func NewRecord(payload []byte, source string) Record {
	return Record{
		Key:        wire.Digest(payload),
		ReceivedAt: time.Now().UTC(),
		Source:     source,
		Payload:    payload,
	}
}

// Store persists Records.
type Store interface {
	// Put stores rec and returns its key. An empty Key is filled in from
	// the payload digest and a zero ReceivedAt with the current time.
	Put(ctx context.Context, rec Record) (string, error)

	// Get returns the record for key, or an error matching ErrNotFound.
	Get(ctx context.Context, key string) (Record, error)

	// List returns every record, oldest first.
	List(ctx context.Context) ([]Record, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the store.
	Close() error
}

// Open returns the store for backend rooted at path. For BackendFile path
// is a directory, for BackendSQLite a database file; BackendNull ignores it.
func Open(ctx context.Context, backend, path string) (Store, error) {
	switch strings.ToLower(backend) {
	case BackendFile, "":
		return NewFileStore(path)
	case BackendSQLite:
		return NewSQLiteStore(ctx, path)
	case BackendNull, "null":
		return NewNullStore(), nil
	}
	return nil, perr.New(perr.ErrCodeInvalidConfig, "unknown archive backend %q (want file, sqlite or none)", backend)
}

// Find returns the single record whose key starts with prefix.
func Find(ctx context.Context, s Store, prefix string) (Record, error) {
	if err := checkKey(prefix, true); err != nil {
		return Record{}, err
	}
	if len(prefix) == digestLen {
		return s.Get(ctx, prefix)
	}
	recs, err := s.List(ctx)
	if err != nil {
		return Record{}, err
	}
	var match []Record
	for _, r := range recs {
		if strings.HasPrefix(r.Key, prefix) {
			match = append(match, r)
		}
	}
	switch len(match) {
	case 0:
		return Record{}, perr.New(perr.ErrCodeNotFound, "no record with key prefix %q", prefix)
	case 1:
		return match[0], nil
	}
	return Record{}, perr.New(perr.ErrCodeInvalidInput, "key prefix %q matches %d records", prefix, len(match))
}

const digestLen = 64

// checkKey accepts lowercase hex digests. With prefix set, any non-empty
// leading part of a digest is accepted too.
func checkKey(key string, prefix bool) error {
	if err := perr.ValidateKey(key); err != nil {
		return err
	}
	if len(key) > digestLen || (!prefix && len(key) != digestLen) {
		return perr.New(perr.ErrCodeInvalidInput, "archive key %q is not a %d-character digest", key, digestLen)
	}
	for _, r := range key {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return perr.New(perr.ErrCodeInvalidInput, "archive key %q is not lowercase hex", key)
		}
	}
	return nil
}

// prepare fills in defaults and validates rec before it is stored.
func prepare(rec Record) (Record, error) {
	if len(rec.Payload) == 0 {
		return Record{}, perr.New(perr.ErrCodeInvalidInput, "cannot archive an empty payload")
	}
	if rec.Key == "" {
		rec.Key = wire.Digest(rec.Payload)
	}
	if err := checkKey(rec.Key, false); err != nil {
		return Record{}, err
	}
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}
	return rec, nil
}

func sortRecords(recs []Record) {
	slices.SortFunc(recs, func(a, b Record) int {
		if c := a.ReceivedAt.Compare(b.ReceivedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
}

func notFound(key string) error {
	return perr.New(perr.ErrCodeNotFound, "no record %s", key)
}
