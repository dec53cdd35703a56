package archive

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	perr "github.com/matzehuels/plotmsg/pkg/errors"
	"github.com/matzehuels/plotmsg/pkg/observability"
)

const fileExt = ".msgpack"

// FileStore keeps one msgpack-encoded Record per file. Files live in
// sub-directories named after the first two characters of the key so no
// single directory grows too large.
type FileStore struct {
	dir string
}

// NewFileStore returns a store in dir, creating the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, perr.New(perr.ErrCodeInvalidConfig, "archive directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, perr.Wrap(perr.ErrCodeInternal, err, "create archive directory %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Put stores rec. Existing records with the same key are overwritten.
func (s *FileStore) Put(ctx context.Context, rec Record) (string, error) {
	rec, err := prepare(rec)
	if err != nil {
		return "", err
	}
	data, err := msgpack.Marshal(&rec)
	if err != nil {
		return "", perr.Wrap(perr.ErrCodeInternal, err, "encode record %s", rec.Key)
	}

	path := s.path(rec.Key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", perr.Wrap(perr.ErrCodeInternal, err, "create %s", filepath.Dir(path))
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", perr.Wrap(perr.ErrCodeInternal, err, "write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", perr.Wrap(perr.ErrCodeInternal, err, "rename %s", tmp)
	}
	observability.Archive().OnArchivePut(ctx, BackendFile, len(rec.Payload))
	return rec.Key, nil
}

// Get returns the record for key.
func (s *FileStore) Get(ctx context.Context, key string) (Record, error) {
	if err := checkKey(key, false); err != nil {
		return Record{}, err
	}
	rec, err := readRecord(s.path(key))
	if os.IsNotExist(err) {
		observability.Archive().OnArchiveMiss(ctx, BackendFile)
		return Record{}, notFound(key)
	}
	if err != nil {
		return Record{}, err
	}
	observability.Archive().OnArchiveHit(ctx, BackendFile)
	return rec, nil
}

// List reads every record in the store. Files that fail to decode are
// skipped.
func (s *FileStore) List(ctx context.Context) ([]Record, error) {
	var recs []Record
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, fileExt) {
			return nil
		}
		rec, err := readRecord(path)
		if err != nil {
			return nil
		}
		recs = append(recs, rec)
		return nil
	})
	if err != nil {
		return nil, perr.Wrap(perr.ErrCodeInternal, err, "list %s", s.dir)
	}
	sortRecords(recs)
	return recs, nil
}

// Delete removes key.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := checkKey(key, false); err != nil {
		return err
	}
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return perr.Wrap(perr.ErrCodeInternal, err, "delete %s", key)
	}
	return nil
}

// Close does nothing for file stores.
func (s *FileStore) Close() error {
	return nil
}

// Dir returns the root directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key[:2], key[2:]+fileExt)
}

func readRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return Record{}, perr.Wrap(perr.ErrCodeMalformedMessage, err, "decode %s", path)
	}
	return rec, nil
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
