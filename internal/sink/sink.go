package sink

import (
	"bufio"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/afero"
)

// Writer appends rendered audit lines to an output.
type Writer interface {
	Write(line string) error
	Close() error
}

// File appends lines to a file, creating it if needed. Writes are buffered
// until Close or Flush.
type File struct {
	mu   sync.Mutex
	path string
	f    afero.File
	w    *bufio.Writer
}

// OpenFile opens path for appending. When header is non-empty and the file
// is empty, the header is written first.
func OpenFile(fs afero.Fs, path, header string) (*File, error) {
	f, err := fs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open audit log %s: %w", path, err)
	}

	out := &File{path: path, f: f, w: bufio.NewWriter(f)}

	if header != "" {
		info, err := f.Stat()
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("stat audit log %s: %w", path, err)
		}
		if info.Size() == 0 {
			if err := out.Write(header); err != nil {
				_ = f.Close()
				return nil, err
			}
		}
	}

	return out, nil
}

// Path returns the file being written.
func (s *File) Path() string {
	return s.path
}

func (s *File) Write(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.w.WriteString(line); err != nil {
		return fmt.Errorf("write audit log %s: %w", s.path, err)
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("write audit log %s: %w", s.path, err)
	}
	return nil
}

// Flush pushes buffered lines to the file.
func (s *File) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("flush audit log %s: %w", s.path, err)
	}
	return nil
}

// Close flushes the buffer and closes the file.
func (s *File) Close() error {
	if err := s.Flush(); err != nil {
		_ = s.f.Close()
		return err
	}
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("close audit log %s: %w", s.path, err)
	}
	return nil
}

// Memory keeps written lines in order. It is used by tests and by callers
// embedding the renderer on the live path.
type Memory struct {
	mu    sync.Mutex
	lines []string
}

// NewMemory creates an empty Memory sink. A non-empty header becomes the
// first line.
func NewMemory(header string) *Memory {
	m := &Memory{}
	if header != "" {
		m.lines = append(m.lines, header)
	}
	return m
}

func (m *Memory) Write(line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, line)
	return nil
}

func (m *Memory) Close() error { return nil }

// Lines returns a copy of everything written so far.
func (m *Memory) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.lines))
	copy(out, m.lines)
	return out
}
