package source

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/banshee-data/scanview/internal/fsutil"
	"github.com/banshee-data/scanview/internal/scan"
)

// FileSource reads the sequence from a JSON file. The file is re-read only
// when its modification time or size changes, so editing the file on disk
// is picked up by the next poll.
type FileSource struct {
	Path string
	FS   fsutil.FileSystem

	mu      sync.Mutex
	modTime time.Time
	size    int64
	cached  scan.Sequence
}

// NewFileSource reads path from the OS filesystem.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path, FS: fsutil.OSFileSystem{}}
}

// Fetch returns the file's contents as a sequence.
func (s *FileSource) Fetch(ctx context.Context) (scan.Sequence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := s.FS.Stat(s.Path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", s.Path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && info.ModTime().Equal(s.modTime) && info.Size() == s.size {
		return s.cached.Clone(), nil
	}

	data, err := s.FS.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	seq, err := scan.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}

	s.cached = seq
	s.modTime = info.ModTime()
	s.size = info.Size()
	return seq.Clone(), nil
}
