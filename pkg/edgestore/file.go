package edgestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	isoerrors "github.com/isocell/isocell/pkg/errors"
)

// FileDirectory stores each segment as a file named after the segment.
type FileDirectory struct {
	baseDir string
}

// NewFileDirectory creates baseDir if needed and returns a directory rooted
// there.
func NewFileDirectory(baseDir string) (*FileDirectory, error) {
	if baseDir == "" {
		return nil, isoerrors.New(isoerrors.ErrCodeInvalidInput, "file directory path is empty")
	}
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileDirectory{baseDir: baseDir}, nil
}

// Path returns the base directory for segment files.
func (d *FileDirectory) Path() string { return d.baseDir }

func (d *FileDirectory) Segment(name string) (Segment, error) {
	if err := isoerrors.ValidateSegmentName(name); err != nil {
		return nil, err
	}
	return &fileSegment{name: name, path: filepath.Join(d.baseDir, name)}, nil
}

func (d *FileDirectory) Close() error { return nil }

type fileSegment struct {
	name string
	path string
}

func (s *fileSegment) Name() string { return s.name }

func (s *fileSegment) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSegmentNotFound
		}
		return nil, fmt.Errorf("read segment %s: %w", s.name, err)
	}
	return data, nil
}

// Save writes to a temporary file in the same directory and renames it over
// the segment, so readers see either the old or the new content.
func (s *fileSegment) Save(ctx context.Context, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+s.name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp segment: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write segment %s: %w", s.name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync segment %s: %w", s.name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close segment %s: %w", s.name, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace segment %s: %w", s.name, err)
	}
	return nil
}

var _ Directory = (*FileDirectory)(nil)
