package store

import (
	"errors"
	"flag"
	"os"
	"path/filepath"

	"github.com/ipfs/go-cid"
)

var flagLocalDir string

func init() {
	MustRegister(Backend{
		Name:        "localfs",
		Description: "local filesystem archive (directory)",
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagLocalDir, "localfs-dir", "", "archive directory (for --backend=localfs)")
		},
		Open: func() (Archive, error) {
			if flagLocalDir == "" {
				return nil, errors.New("store: missing --localfs-dir")
			}
			return NewLocalFS(flagLocalDir)
		},
	})
}

// LocalFS is a filesystem-backed Archive rooted at one directory.
//
// Blobs land under <root>/<first two id chars>/<id>, written with an
// O_EXCL create so an existing blob is never rewritten. Even though
// archives are expected to be sealed already, files are created 0600
// under 0700 directories: key-material blobs get private permissions
// regardless of their encryption state.
type LocalFS struct {
	root string
}

var _ Archive = (*LocalFS)(nil)

// NewLocalFS opens (creating if needed) an archive directory.
func NewLocalFS(root string) (*LocalFS, error) {
	if root == "" {
		return nil, errors.New("store: archive directory is required")
	}
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, err
	}
	return &LocalFS{root: root}, nil
}

func (l *LocalFS) Put(blob []byte) (cid.Cid, error) {
	id, err := ID(blob)
	if err != nil {
		return cid.Undef, ErrInvalidID
	}
	path := l.pathFor(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return cid.Undef, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if os.IsExist(err) {
			existing, rerr := l.Get(id)
			if rerr != nil || string(existing) != string(blob) {
				return cid.Undef, ErrImmutable
			}
			return id, nil
		}
		return cid.Undef, err
	}

	if _, err := f.Write(blob); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return cid.Undef, err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return cid.Undef, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return cid.Undef, err
	}
	return id, nil
}

func (l *LocalFS) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidID
	}
	blob, err := os.ReadFile(l.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	got, err := ID(blob)
	if err != nil {
		return nil, err
	}
	if got != id {
		return nil, ErrIDMismatch
	}
	return blob, nil
}

func (l *LocalFS) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	_, err := os.Stat(l.pathFor(id))
	return err == nil
}

func (l *LocalFS) pathFor(id cid.Cid) string {
	s := id.String()
	if len(s) < 2 {
		return filepath.Join(l.root, s)
	}
	return filepath.Join(l.root, s[:2], s)
}
