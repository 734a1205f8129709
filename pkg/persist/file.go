package persist

import (
	"context"
	"os"
	"path/filepath"
	"regexp"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/arthur-debert/tasklines/pkg/core"
	"github.com/arthur-debert/tasklines/pkg/errors"
	"github.com/arthur-debert/tasklines/pkg/logging"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// FileStore keeps one TOML file per key in a directory
type FileStore struct {
	fs  afero.Fs
	dir string
}

// NewFileStore stores records under dir on fs, creating dir if needed
func NewFileStore(fs afero.Fs, dir string) (*FileStore, error) {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, errors.IO(err, "creating persistence directory").WithDetail("dir", dir)
	}
	return &FileStore{fs: fs, dir: dir}, nil
}

// NewOSFileStore stores records under dir on the real filesystem
func NewOSFileStore(dir string) (*FileStore, error) {
	return NewFileStore(afero.NewOsFs(), dir)
}

func (s *FileStore) path(key string) (string, error) {
	if !validKey.MatchString(key) || key == "." || key == ".." {
		return "", errors.Validation("invalid persistence key %q", key).WithDetail("key", key)
	}
	return filepath.Join(s.dir, key+".toml"), nil
}

func (s *FileStore) Load(ctx context.Context, key string) (core.PersistedState, bool, error) {
	var state core.PersistedState
	if err := ctx.Err(); err != nil {
		return state, false, err
	}
	p, err := s.path(key)
	if err != nil {
		return state, false, err
	}
	data, err := afero.ReadFile(s.fs, p)
	if err != nil {
		if os.IsNotExist(err) {
			return state, false, nil
		}
		return state, false, errors.IO(err, "reading persisted state").WithDetail("path", p)
	}
	if err := toml.Unmarshal(data, &state); err != nil {
		return state, false, errors.IO(err, "decoding persisted state").WithDetail("path", p)
	}
	return state, true, nil
}

// Save writes through a temp file and a rename, so readers never see a
// partial record
func (s *FileStore) Save(ctx context.Context, key string, state core.PersistedState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	data, err := toml.Marshal(state)
	if err != nil {
		return errors.IO(err, "encoding persisted state").WithDetail("key", key)
	}

	tmp, err := afero.TempFile(s.fs, s.dir, "."+key+".*.tmp")
	if err != nil {
		return errors.IO(err, "creating temp file").WithDetail("dir", s.dir)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		if rmErr := s.fs.Remove(tmpName); rmErr != nil && !os.IsNotExist(rmErr) {
			logger := logging.GetLogger("persist")
			logger.Warn().Err(rmErr).Str("path", tmpName).Msg("Failed to remove temp file")
		}
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.IO(err, "writing temp file").WithDetail("path", tmpName)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.IO(err, "syncing temp file").WithDetail("path", tmpName)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.IO(err, "closing temp file").WithDetail("path", tmpName)
	}
	if err := s.fs.Rename(tmpName, p); err != nil {
		cleanup()
		return errors.IO(err, "renaming temp file").WithDetail("path", p)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil && !os.IsNotExist(err) {
		return errors.IO(err, "deleting persisted state").WithDetail("path", p)
	}
	return nil
}
