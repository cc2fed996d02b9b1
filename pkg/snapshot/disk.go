package snapshot

import (
	"context"
	"os"
	"path/filepath"

	"github.com/vango-dev/vrt/internal/errors"
)

// DiskStore writes snapshots below a directory.
type DiskStore struct {
	dir    string
	prefix string
}

// NewDiskStore creates dir if needed.
func NewDiskStore(dir, prefix string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.New("E140").Wrap(err)
	}
	return &DiskStore{dir: dir, prefix: prefix}, nil
}

// Dir returns the root directory.
func (s *DiskStore) Dir() string { return s.dir }

// Put writes html to dir/key. An existing file with the same key already
// holds the same content and is left alone.
func (s *DiskStore) Put(ctx context.Context, name string, html []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name, err := CleanName(name)
	if err != nil {
		return "", err
	}

	key := Key(s.prefix, name, html)
	target := filepath.Join(s.dir, filepath.FromSlash(key))
	if _, err := os.Stat(target); err == nil {
		return key, nil
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", errors.New("E140").Wrap(err)
	}

	// Write to a temp file and rename so readers never see partial markup.
	tmp, err := os.CreateTemp(filepath.Dir(target), ".snapshot-*")
	if err != nil {
		return "", errors.New("E140").Wrap(err)
	}
	if _, err := tmp.Write(html); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", errors.New("E140").Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", errors.New("E140").Wrap(err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return "", errors.New("E140").Wrap(err)
	}
	return key, nil
}
