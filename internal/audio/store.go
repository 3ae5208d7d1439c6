package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store keeps uploaded practice recordings on disk. Filenames are
// generated, never taken from the client, so an upload can't escape
// the directory or clobber another student's recording.
type Store struct {
	dir string
}

// NewStore creates an audio store rooted at dir, creating it if
// needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes one recording and returns the stored filename (not the
// full path). The original name contributes only its extension.
func (s *Store) Save(r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	switch ext {
	case ".webm", ".mp3", ".wav", ".ogg", ".m4a":
	default:
		ext = ".webm"
	}

	filename := uuid.NewString() + ext
	path := filepath.Join(s.dir, filename)

	outFile, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create audio file: %w", err)
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}

	return filename, nil
}

// Path returns the on-disk path for a stored filename.
func (s *Store) Path(filename string) string {
	return filepath.Join(s.dir, filepath.Base(filename))
}

// Dir returns the root of the store for static file serving.
func (s *Store) Dir() string {
	return s.dir
}

// Delete removes a recording. A missing file is not an error.
func (s *Store) Delete(filename string) error {
	path := s.Path(filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(path)
}

// List returns the stored recording filenames.
func (s *Store) List() ([]string, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload directory: %w", err)
	}

	var names []string
	for _, file := range files {
		if !file.IsDir() {
			names = append(names, file.Name())
		}
	}
	return names, nil
}
