package storage

import "context"

// Store persists uploaded binaries and returns a stable storage-relative
// path. The returned path is what gets recorded on the row; public access
// goes through the /storage static prefix.
//
//go:generate mockgen -source=storage.go -destination=mock/storage_mock.go -package=mock
type Store interface {
	Save(ctx context.Context, namespace, filename string, data []byte) (string, error)
	Remove(ctx context.Context, path string) error
}
