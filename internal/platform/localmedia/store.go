package localmedia

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yomikata/yomikata-backend/internal/platform/envutil"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

const (
	CategoryAvatar = "avatar"
)

// Store writes media objects to local disk and serves them back through the
// static file route mounted at baseURL. Keys are slash-separated and scoped
// under a category directory.
type Store interface {
	Save(category, key string, r io.Reader) error
	Delete(category, key string) error
	PublicURL(category, key string) string
	Root() string
}

type store struct {
	root    string
	baseURL string
	log     *logger.Logger
}

func NewStore(log *logger.Logger) (Store, error) {
	serviceLog := log.With("service", "MediaStore")

	root := envutil.GetEnv("MEDIA_ROOT", "./media", log)
	baseURL := strings.TrimRight(envutil.GetEnv("MEDIA_BASE_URL", "/media", log), "/")

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root %s: %w", root, err)
	}

	return &store{root: root, baseURL: baseURL, log: serviceLog}, nil
}

func (s *store) Save(category, key string, r io.Reader) error {
	path, err := s.resolve(category, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create media dir: %w", err)
	}

	// Write to a temp file and rename so readers never see partial objects.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp media file: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write media file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close media file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to finalize media file: %w", err)
	}
	return nil
}

func (s *store) Delete(category, key string) error {
	path, err := s.resolve(category, key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete media file: %w", err)
	}
	return nil
}

func (s *store) PublicURL(category, key string) string {
	return s.baseURL + "/" + category + "/" + key
}

func (s *store) Root() string {
	return s.root
}

func (s *store) resolve(category, key string) (string, error) {
	if category == "" || key == "" {
		return "", fmt.Errorf("media category and key required")
	}
	rel := filepath.Join(category, filepath.FromSlash(key))
	path := filepath.Join(s.root, rel)
	// Reject keys that escape the root via "..".
	cleanRoot := filepath.Clean(s.root) + string(os.PathSeparator)
	if !strings.HasPrefix(filepath.Clean(path)+string(os.PathSeparator), cleanRoot) &&
		filepath.Clean(path) != filepath.Clean(s.root) {
		return "", fmt.Errorf("media key %q escapes media root", key)
	}
	return path, nil
}
