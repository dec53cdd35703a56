package archive

import (
	"context"
)

// NullStore is a no-op store that never keeps anything.
// Useful for testing or when recording is disabled.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() Store {
	return &NullStore{}
}

// Put validates rec and returns its key without storing it.
func (s *NullStore) Put(ctx context.Context, rec Record) (string, error) {
	rec, err := prepare(rec)
	if err != nil {
		return "", err
	}
	return rec.Key, nil
}

// Get always reports a miss.
func (s *NullStore) Get(ctx context.Context, key string) (Record, error) {
	return Record{}, notFound(key)
}

// List always returns nothing.
func (s *NullStore) List(ctx context.Context) ([]Record, error) {
	return nil, nil
}

// Delete does nothing.
func (s *NullStore) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (s *NullStore) Close() error {
	return nil
}

// Ensure NullStore implements Store.
var _ Store = (*NullStore)(nil)
