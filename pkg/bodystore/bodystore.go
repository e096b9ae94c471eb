// Package bodystore holds a response body that may be too large to keep
// entirely in memory: writes accumulate in a bytes.Buffer until a configured
// limit, then spill to a temp file. This is the storage half of the
// RW-locked Response body discipline described at the request-engine level.
package bodystore

import (
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/coregate/rawclient/pkg/rawerrors"
)

// DefaultMemLimit is used when a Store is created with a non-positive
// limit.
const DefaultMemLimit = 4 * 1024 * 1024

// Store accumulates body bytes, spilling to a temp file past its memory
// limit. Safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	file   *os.File
	path   string
	size   int64
	limit  int64
	closed bool
}

// New creates an empty Store with the given memory limit (bytes).
func New(limit int64) *Store {
	if limit <= 0 {
		limit = DefaultMemLimit
	}
	return &Store{limit: limit}
}

// FromBytes wraps already-known-in-memory data in a Store, useful when
// installing a decoded body.
func FromBytes(data []byte) *Store {
	s := &Store{limit: DefaultMemLimit, size: int64(len(data))}
	s.buf.Write(data)
	return s
}

// Write appends p, spilling to disk once the memory limit is exceeded.
func (s *Store) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, rawerrors.IOError("write_body", nil)
	}

	s.size += int64(len(p))

	if s.file == nil && int64(s.buf.Len()+len(p)) <= s.limit {
		return s.buf.Write(p)
	}

	if s.file == nil {
		tmp, err := os.CreateTemp("", "rawclient-body-*.tmp")
		if err != nil {
			return 0, rawerrors.IOError("create_temp_body", err)
		}
		s.file = tmp
		s.path = tmp.Name()
		if s.buf.Len() > 0 {
			if _, err := tmp.Write(s.buf.Bytes()); err != nil {
				s.closeLocked()
				return 0, rawerrors.IOError("spill_body", err)
			}
		}
		s.buf.Reset()
	}

	n, err := s.file.Write(p)
	if err != nil {
		return n, rawerrors.IOError("write_spilled_body", err)
	}
	return n, nil
}

// Bytes returns the in-memory payload. Empty if the body has spilled to
// disk — use Reader in that case.
func (s *Store) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		return nil
	}
	return append([]byte(nil), s.buf.Bytes()...)
}

// ReadAll returns the full body regardless of storage location, reading
// from disk if spilled.
func (s *Store) ReadAll() ([]byte, error) {
	s.mu.Lock()
	spilled := s.file != nil
	path := s.path
	s.mu.Unlock()

	if !spilled {
		return s.Bytes(), nil
	}
	return os.ReadFile(path)
}

// IsSpilled reports whether the body has moved to disk.
func (s *Store) IsSpilled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file != nil
}

// Size returns the total number of bytes written.
func (s *Store) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Reader opens a fresh reader over the stored body.
func (s *Store) Reader() (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, rawerrors.IOError("read_body", nil)
	}
	if s.file != nil {
		if err := s.file.Sync(); err != nil {
			return nil, rawerrors.IOError("sync_body", err)
		}
		f, err := os.Open(s.path)
		if err != nil {
			return nil, rawerrors.IOError("open_body", err)
		}
		return f, nil
	}
	return io.NopCloser(bytes.NewReader(s.buf.Bytes())), nil
}

func (s *Store) closeLocked() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.file != nil {
		err := s.file.Close()
		if removeErr := os.Remove(s.path); removeErr != nil && err == nil {
			err = removeErr
		}
		s.file = nil
		s.path = ""
		if err != nil {
			return rawerrors.IOError("close_body", err)
		}
	}
	return nil
}

// Close releases any spilled temp file. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}
