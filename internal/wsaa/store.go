package wsaa

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// ErrTicketNotFound is returned by a Store holding no ticket for a service
var ErrTicketNotFound = errors.New("wsaa: ticket not found")

// Store persists raw loginTicketResponse documents per service
type Store interface {
	Load(ctx context.Context, service string) ([]byte, error)
	Save(ctx context.Context, service string, raw []byte, expiry time.Time) error
}

// FileStore keeps tickets as TA-<service>.xml files inside a directory
type FileStore struct {
	dir string
}

// NewFileStore creates a file store rooted at dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the file holding the ticket for service
func (s *FileStore) Path(service string) string {
	return filepath.Join(s.dir, "TA-"+service+".xml")
}

// Load reads the stored ticket for service
func (s *FileStore) Load(_ context.Context, service string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(service))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ticket file: %w", err)
	}
	return data, nil
}

// Save writes the ticket for service, replacing any previous one
func (s *FileStore) Save(_ context.Context, service string, raw []byte, _ time.Time) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create ticket directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".TA-*.xml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write ticket file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write ticket file: %w", err)
	}

	return os.Rename(tmp.Name(), s.Path(service))
}
