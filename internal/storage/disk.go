package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DiskStore writes files under a local root directory. Object names are
// random hex so submitted filenames never reach the filesystem; only the
// original extension survives (lowercased).
type DiskStore struct {
	root string
}

func NewDiskStore(root string) *DiskStore {
	return &DiskStore{root: root}
}

func (s *DiskStore) Save(ctx context.Context, namespace, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name, err := randomName(filename)
	if err != nil {
		return "", err
	}

	relPath := path.Join(namespace, name)
	absPath := filepath.Join(s.root, filepath.FromSlash(relPath))

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("create storage dir: %w", err)
	}
	if err := os.WriteFile(absPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return relPath, nil
}

func (s *DiskStore) Remove(ctx context.Context, relPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	clean := path.Clean("/" + relPath)
	absPath := filepath.Join(s.root, filepath.FromSlash(clean))

	err := os.Remove(absPath)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func randomName(filename string) (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	return hex.EncodeToString(buf) + ext, nil
}
