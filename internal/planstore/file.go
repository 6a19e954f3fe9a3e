package planstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/plan"
)

// FileStore keeps the plan in a local file.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore creates a FileStore at the given path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

func (s *FileStore) Load(_ context.Context) (*plan.Plan, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("cannot open plan %s: %w", s.path, err)
	}
	defer f.Close()

	p, err := plan.Decode(f, s.logger)
	if err != nil {
		return nil, fmt.Errorf("cannot decode plan %s: %w", s.path, err)
	}
	return p, nil
}

// Save writes to a temp file and renames it into place, so a failed write
// never leaves a truncated plan where a later load would find it.
func (s *FileStore) Save(_ context.Context, p *plan.Plan) error {
	f, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp")
	if err != nil {
		return fmt.Errorf("cannot create plan %s: %w", s.path, err)
	}
	defer os.Remove(f.Name())

	if err := plan.Encode(f, p); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("cannot write plan %s: %w", s.path, err)
	}
	if err := os.Rename(f.Name(), s.path); err != nil {
		return fmt.Errorf("cannot write plan %s: %w", s.path, err)
	}
	return nil
}
