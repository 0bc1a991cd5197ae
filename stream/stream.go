// Package stream implements a buffered, seekable byte stream over an
// os.File, with an internal read-ahead window and lazy seek
// coalescing so that sequential parsing does not pay a syscall per
// element header.
package stream

import (
	"errors"
	"io"
	"os"
)

const bufferSize = 8192

var (
	// ErrReadOnly is returned by Write on a stream opened read-only.
	ErrReadOnly = errors.New("stream: write on read-only stream")
	// ErrTruncated is returned when a read cannot satisfy the
	// requested length because the underlying file ended early.
	ErrTruncated = errors.New("stream: truncated read")
	// ErrNegativeSeek is returned when a seek would land before the
	// start of the file.
	ErrNegativeSeek = errors.New("stream: seek before start of file")
)

// Stream is a seekable byte stream with an 8 KiB read buffer. Logical
// position is bufferOffset + bufferPos; a real syscall seek is only
// issued when the target falls outside the buffer's current window.
type Stream struct {
	f        *os.File
	writable bool
	size     int64

	buffer       [bufferSize]byte
	bufferOffset int64 // absolute file position of buffer[0]
	bufferLen    int   // valid bytes in buffer
	bufferPos    int   // 0 <= bufferPos <= bufferLen
}

// Open opens path read-only.
func Open(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return newStream(f, false)
}

// OpenRW opens path for reading and writing; the file must already exist.
func OpenRW(path string) (*Stream, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return newStream(f, true)
}

func newStream(f *os.File, writable bool) (*Stream, error) {
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Stream{f: f, writable: writable, size: info.Size()}, nil
}

// Close closes the underlying file.
func (s *Stream) Close() error {
	return s.f.Close()
}

// IsWritable reports whether the stream was opened read-write.
func (s *Stream) IsWritable() bool {
	return s.writable
}

// Size returns the file size recorded at open, extended by any writes
// made through this stream.
func (s *Stream) Size() (int64, error) {
	return s.size, nil
}

// Tell returns the current logical position.
func (s *Stream) Tell() (int64, error) {
	return s.bufferOffset + int64(s.bufferPos), nil
}

// Seek repositions the stream. If the target lies within the current
// buffer window, only bufferPos is adjusted — no syscall is issued.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		cur, _ := s.Tell()
		target = cur + offset
	case io.SeekEnd:
		target = s.size + offset
	default:
		return 0, errors.New("stream: invalid whence")
	}
	if target < 0 {
		return 0, ErrNegativeSeek
	}

	if target >= s.bufferOffset && target <= s.bufferOffset+int64(s.bufferLen) {
		s.bufferPos = int(target - s.bufferOffset)
		return target, nil
	}

	if _, err := s.f.Seek(target, io.SeekStart); err != nil {
		return 0, err
	}
	s.bufferOffset = target
	s.bufferLen = 0
	s.bufferPos = 0
	return target, nil
}

// refill synchronizes bufferOffset with the real fd position (which may
// have drifted if something else moved it) and reads up to bufferSize
// fresh bytes.
func (s *Stream) refill() error {
	pos, err := s.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	s.bufferOffset = pos
	n, err := s.f.Read(s.buffer[:])
	if err != nil && err != io.EOF {
		return err
	}
	s.bufferLen = n
	s.bufferPos = 0
	return nil
}

// Read implements io.Reader, pulling from the internal buffer and
// refilling from the file as needed.
func (s *Stream) Read(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		if s.bufferPos >= s.bufferLen {
			if err := s.refill(); err != nil {
				return total, err
			}
			if s.bufferLen == 0 {
				break
			}
		}
		n := copy(p[total:], s.buffer[s.bufferPos:s.bufferLen])
		s.bufferPos += n
		total += n
	}
	if total == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return total, nil
}

// ReadFull reads exactly len(p) bytes or returns ErrTruncated.
func (s *Stream) ReadFull(p []byte) error {
	n, err := io.ReadFull(s, p)
	if err != nil {
		if n < len(p) {
			return ErrTruncated
		}
		return err
	}
	return nil
}

// ReadByte reads a single byte.
func (s *Stream) ReadByte() (byte, error) {
	var b [1]byte
	if err := s.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// Peek reads len(p) bytes without advancing the logical position.
func (s *Stream) Peek(p []byte) error {
	pos, _ := s.Tell()
	err := s.ReadFull(p)
	if _, serr := s.Seek(pos, io.SeekStart); serr != nil && err == nil {
		err = serr
	}
	return err
}

// Write implements io.Writer. It realigns the real file descriptor to
// the stream's logical position (which the read buffer may have made
// stale relative to the fd), invalidates the read buffer, and extends
// the tracked file size if the write passes the previous end.
func (s *Stream) Write(p []byte) (int, error) {
	if !s.writable {
		return 0, ErrReadOnly
	}
	pos, _ := s.Tell()
	if _, err := s.f.Seek(pos, io.SeekStart); err != nil {
		return 0, err
	}

	total := 0
	for total < len(p) {
		n, err := s.f.Write(p[total:])
		if n > 0 {
			total += n
		}
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, errors.New("stream: short write")
		}
	}

	newPos := pos + int64(total)
	if newPos > s.size {
		s.size = newPos
	}
	s.bufferOffset = newPos
	s.bufferLen = 0
	s.bufferPos = 0
	return total, nil
}

// Flush issues a durability barrier (fsync). No-op semantically on a
// read-only stream, but harmless to call.
func (s *Stream) Flush() error {
	if !s.writable {
		return nil
	}
	return s.f.Sync()
}

// Skip advances the logical position by n bytes (n may be negative).
func (s *Stream) Skip(n int64) error {
	_, err := s.Seek(n, io.SeekCurrent)
	return err
}
