package ebml

import (
	"errors"
	"io"
)

// ErrUnknownSizeSkip is returned by SkipElement when asked to skip an
// element whose size is the unknown-size sentinel; there is no end
// offset to seek to.
var ErrUnknownSizeSkip = errors.New("ebml: cannot skip an unknown-size element")

// Reader is the minimal seekable, tellable byte source the framer
// needs. *stream.Stream satisfies this structurally.
type Reader interface {
	io.Reader
	Tell() (int64, error)
	Seek(offset int64, whence int) (int64, error)
	Size() (int64, error)
}

// Header is a parsed element frame: enough to locate and skip an
// element without decoding its content.
type Header struct {
	ID          uint32
	Size        uint64
	IDLen       int
	SizeLen     int
	DataOffset  int64
	EndOffset   int64
	SizeUnknown bool
}

// ReadHeader reads one element header starting at the reader's current
// position, leaving the position at the start of the element's content.
func ReadHeader(r Reader) (Header, error) {
	var h Header

	first := make([]byte, 1)
	if _, err := io.ReadFull(r, first); err != nil {
		return h, err
	}
	idLen := VintLength(first[0])
	if idLen == 0 || idLen > 4 {
		return h, ErrInvalidVint
	}
	idBuf := make([]byte, idLen)
	idBuf[0] = first[0]
	if idLen > 1 {
		if _, err := io.ReadFull(r, idBuf[1:]); err != nil {
			return h, err
		}
	}
	id, err := IDDecode(idBuf)
	if err != nil {
		return h, err
	}

	sizeFirst := make([]byte, 1)
	if _, err := io.ReadFull(r, sizeFirst); err != nil {
		return h, err
	}
	sizeLen := VintLength(sizeFirst[0])
	if sizeLen == 0 || sizeLen > 8 {
		return h, ErrInvalidVint
	}
	sizeBuf := make([]byte, sizeLen)
	sizeBuf[0] = sizeFirst[0]
	if sizeLen > 1 {
		if _, err := io.ReadFull(r, sizeBuf[1:]); err != nil {
			return h, err
		}
	}
	size, err := VintDecode(sizeBuf)
	if err != nil {
		return h, err
	}

	dataOffset, err := r.Tell()
	if err != nil {
		return h, err
	}

	h.ID = id
	h.Size = size
	h.IDLen = idLen
	h.SizeLen = sizeLen
	h.DataOffset = dataOffset
	h.SizeUnknown = VintIsUnknown(size, sizeLen)

	if h.SizeUnknown {
		fileSize, err := r.Size()
		if err != nil {
			return h, err
		}
		h.EndOffset = fileSize
	} else {
		h.EndOffset = dataOffset + int64(size)
	}
	return h, nil
}

// PeekHeader reads a header without advancing the reader's position.
func PeekHeader(r Reader) (Header, error) {
	pos, err := r.Tell()
	if err != nil {
		return Header{}, err
	}
	h, err := ReadHeader(r)
	if _, serr := r.Seek(pos, io.SeekStart); serr != nil && err == nil {
		err = serr
	}
	return h, err
}

// SkipElement advances r past h's content.
func SkipElement(r Reader, h Header) error {
	if h.SizeUnknown {
		return ErrUnknownSizeSkip
	}
	_, err := r.Seek(h.EndOffset, io.SeekStart)
	return err
}

// AtElementEnd reports whether r's current position has reached or
// passed parent's end offset. A nil parent (zero Header with EndOffset
// 0) is never meaningfully queried by this package; callers always
// pass a concrete parent header.
func AtElementEnd(r Reader, parent Header) (bool, error) {
	pos, err := r.Tell()
	if err != nil {
		return false, err
	}
	return pos >= parent.EndOffset, nil
}

// WriteMasterHeader appends an ID + size VINT header (no content) for
// a master element of the given content size.
func WriteMasterHeader(dst []byte, id uint32, contentSize int) ([]byte, error) {
	dst, err := IDEncode(dst, id)
	if err != nil {
		return nil, err
	}
	return VintEncode(dst, uint64(contentSize))
}

// MasterHeaderSize returns the encoded byte length of a master header
// for the given id and content size, without writing anything.
func MasterHeaderSize(id uint32, contentSize int) int {
	return IDSize(id) + VintSize(uint64(contentSize))
}
