package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"go.uber.org/zap"
)

// ErrIconNotFound reports an icon name with no backing file.
var ErrIconNotFound = errors.New("icon not found")

var iconNamePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// IconStore lazily loads and memoizes command icon blobs from a directory.
// Icon names are the kebab-case file names without the .png extension. An
// empty directory disables the store.
type IconStore struct {
	dir    string
	mutex  sync.Mutex
	cache  map[string][]byte
	logger *zap.Logger
}

func CreateIconStore(dir string, logger *zap.Logger) *IconStore {
	return &IconStore{
		dir:    dir,
		cache:  map[string][]byte{},
		logger: logger.With(zap.String("icons", dir)),
	}
}

func (s *IconStore) Enabled() bool {
	return s.dir != ""
}

func (s *IconStore) Icon(name string) ([]byte, error) {
	if s.dir == "" || !iconNamePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: %s", ErrIconNotFound, name)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if blob, ok := s.cache[name]; ok {
		return blob, nil
	}

	blob, err := os.ReadFile(filepath.Join(s.dir, name+".png"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrIconNotFound, name)
		}
		return nil, fmt.Errorf("read icon %s: %w", name, err)
	}
	s.logger.Debug("icon loaded", zap.String("name", name), zap.Int("bytes", len(blob)))
	s.cache[name] = blob
	return blob, nil
}
