package blob

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Store persists uploaded blobs (profile pictures) and returns a reference
// the client can fetch them by.
type Store interface {
	Put(name string, r io.Reader) (string, error)
}

// DiskStore writes blobs under a local directory, served statically by the
// HTTP layer.
type DiskStore struct {
	Dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.WithMessage(err, "create upload dir")
	}
	return &DiskStore{Dir: dir}, nil
}

// Put stores the blob under a fresh name derived from the original
// extension and returns its serving path.
func (d *DiskStore) Put(name string, r io.Reader) (string, error) {
	filename := uuid.New().String() + filepath.Ext(name)
	path := filepath.Join(d.Dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", errors.WithMessage(err, "create blob file")
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", errors.WithMessage(err, "write blob")
	}
	return "/uploads/" + filename, nil
}
