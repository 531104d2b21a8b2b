package audio

import (
	"errors"
	"io"
	"sync"
)

// Source supplies samples from an already-acquired capture device or
// recording. Read delivers instantaneous mono time-domain samples for
// metering; Decode materializes the whole clip for offline processing.
//
// Read is non-mutating with respect to concurrent readers: a
// visualization loop may read alongside a running measurement.
type Source interface {
	// Read fills dst with up to len(dst) samples and returns the number
	// of samples written. It returns io.EOF when the source is
	// exhausted and 0, nil when no samples are available yet.
	Read(dst []float64) (int, error)

	// Decode returns the fully decoded clip.
	Decode() (*Buffer, error)

	// Close releases the underlying device or file handle. It must be
	// called before acquiring a replacement source.
	Close() error
}

// BufferSource adapts a decoded [Buffer] as a [Source]. Reads deliver
// the mono mixdown sequentially; Decode returns a clone of the backing
// buffer so callers cannot mutate it.
type BufferSource struct {
	mu     sync.Mutex
	buf    *Buffer
	mono   []float64
	pos    int
	closed bool
}

// NewBufferSource wraps buf as a Source.
func NewBufferSource(buf *Buffer) (*BufferSource, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	return &BufferSource{buf: buf, mono: buf.Mixdown()}, nil
}

// Read copies the next mono samples into dst.
func (s *BufferSource) Read(dst []float64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, errors.New("audio: read from closed source")
	}

	if s.pos >= len(s.mono) {
		return 0, io.EOF
	}

	n := copy(dst, s.mono[s.pos:])
	s.pos += n

	return n, nil
}

// Decode returns a clone of the backing buffer.
func (s *BufferSource) Decode() (*Buffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New("audio: decode from closed source")
	}

	return s.buf.Clone(), nil
}

// Close marks the source closed. Further reads fail.
func (s *BufferSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true

	return nil
}
