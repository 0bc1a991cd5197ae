// Package matroska walks the top-level structure of a Matroska/WebM
// Segment: the EBML header, the prologue of Segment children that
// precede the first Cluster, and the SeekHead index that points at
// them.
package matroska

import (
	"errors"
	"io"

	"github.com/mkvtag/mkvtag/ebml"
)

var (
	// ErrNotEBML is returned when the file does not begin with an
	// EBML header element.
	ErrNotEBML = errors.New("matroska: not an EBML stream")
	// ErrNotMKV is returned when the EBML header's DocType is
	// neither "matroska" nor "webm".
	ErrNotMKV = errors.New("matroska: unrecognized DocType")
	// ErrNoSegment is returned when no Segment element follows the
	// EBML header.
	ErrNoSegment = errors.New("matroska: missing Segment element")
)

// Absent marks a top-level offset field as unresolved (the element is
// missing from the file, or has not been located yet).
const Absent = int64(-1)

const absent = Absent

// Header holds the parsed EBML header fields.
type Header struct {
	EBMLVersion     uint64
	EBMLReadVersion uint64
	DocType         string
	DocTypeVersion  uint64
	DocTypeReadVer  uint64
}

// Segment records the outer Segment element's framing.
type Segment struct {
	Offset       int64
	DataOffset   int64
	Size         uint64
	UnknownSize  bool
	SizeLen      int
	IDLen        int
}

// ContentEnd returns the absolute offset one past the Segment's
// declared content, or fileSize when the Segment size is unknown.
func (s Segment) ContentEnd(fileSize int64) int64 {
	if s.UnknownSize {
		return fileSize
	}
	return s.DataOffset + int64(s.Size)
}

// Void records the largest standalone Void element found in the
// Segment prologue.
type Void struct {
	Offset int64 // absolute offset of the Void element's own ID byte
	Size   int64 // total span including ID + size VINT + content
}

// Navigator holds the parsed top-level structure of one Matroska file.
type Navigator struct {
	r ebml.Reader

	Header  Header
	Segment Segment

	SeekHeadOffset   int64
	InfoOffset       int64
	TracksOffset     int64
	CuesOffset       int64
	TagsOffset       int64
	ChaptersOffset   int64
	AttachmentsOffset int64
	FirstClusterOffset int64

	LargestVoid Void

	cache *Cache
}

// prologueIDs is the set of top-level children the prologue scan
// records the offset of.
var prologueIDs = map[uint32]bool{
	ebml.IDSeekHead:    true,
	ebml.IDInfo:        true,
	ebml.IDTracks:      true,
	ebml.IDCues:        true,
	ebml.IDTags:        true,
	ebml.IDChapters:    true,
	ebml.IDAttachments: true,
}

// Open validates the EBML header, locates the Segment, and scans its
// prologue.
func Open(r ebml.Reader) (*Navigator, error) {
	n := &Navigator{
		r:                  r,
		SeekHeadOffset:     absent,
		InfoOffset:         absent,
		TracksOffset:       absent,
		CuesOffset:         absent,
		TagsOffset:         absent,
		ChaptersOffset:     absent,
		AttachmentsOffset:  absent,
		FirstClusterOffset: absent,
		cache:              newCache(),
	}
	if err := n.parseHeader(); err != nil {
		return nil, err
	}
	if err := n.parseSegment(); err != nil {
		return nil, err
	}
	if err := n.scanPrologue(); err != nil {
		return nil, err
	}
	if err := n.resolveSeekHead(); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Navigator) parseHeader() error {
	if _, err := n.r.Seek(0, io.SeekStart); err != nil {
		return err
	}
	h, err := ebml.ReadHeader(n.r)
	if err != nil {
		return err
	}
	if h.ID != ebml.IDEBML {
		return ErrNotEBML
	}
	end := h.EndOffset
	for {
		pos, _ := n.r.Tell()
		if pos >= end {
			break
		}
		child, err := ebml.ReadHeader(n.r)
		if err != nil {
			return err
		}
		switch child.ID {
		case ebml.IDEBMLVersion:
			n.Header.EBMLVersion, err = ebml.DecodeUint(n.r, child)
		case ebml.IDEBMLReadVersion:
			n.Header.EBMLReadVersion, err = ebml.DecodeUint(n.r, child)
		case ebml.IDDocType:
			n.Header.DocType, err = ebml.DecodeString(n.r, child, 0)
		case ebml.IDDocTypeVersion:
			n.Header.DocTypeVersion, err = ebml.DecodeUint(n.r, child)
		case ebml.IDDocTypeReadVer:
			n.Header.DocTypeReadVer, err = ebml.DecodeUint(n.r, child)
		}
		if err != nil {
			return err
		}
		if err := ebml.SkipElement(n.r, child); err != nil {
			return err
		}
	}
	if n.Header.DocType != "matroska" && n.Header.DocType != "webm" {
		return ErrNotMKV
	}
	return nil
}

func (n *Navigator) parseSegment() error {
	h, err := ebml.ReadHeader(n.r)
	if err != nil {
		return err
	}
	if h.ID != ebml.IDSegment {
		return ErrNoSegment
	}
	n.Segment = Segment{
		Offset:      h.DataOffset - int64(h.IDLen) - int64(h.SizeLen),
		DataOffset:  h.DataOffset,
		Size:        h.Size,
		UnknownSize: h.SizeUnknown,
		SizeLen:     h.SizeLen,
		IDLen:       h.IDLen,
	}
	return nil
}

func (n *Navigator) scanPrologue() error {
	fileSize, err := n.r.Size()
	if err != nil {
		return err
	}
	segmentEnd := n.Segment.ContentEnd(fileSize)

	if _, err := n.r.Seek(n.Segment.DataOffset, io.SeekStart); err != nil {
		return err
	}
	for {
		pos, _ := n.r.Tell()
		if pos >= segmentEnd {
			break
		}
		h, err := ebml.ReadHeader(n.r)
		if err != nil {
			return err
		}
		if h.ID == ebml.IDCluster {
			n.FirstClusterOffset = pos
			break
		}
		if prologueIDs[h.ID] {
			n.setOffset(h.ID, pos)
		}
		if h.ID == ebml.IDVoid {
			total := h.EndOffset - pos
			if total > n.LargestVoid.Size {
				n.LargestVoid = Void{Offset: pos, Size: total}
			}
		}
		if h.SizeUnknown {
			break
		}
		if err := ebml.SkipElement(n.r, h); err != nil {
			return err
		}
	}
	return nil
}

func (n *Navigator) setOffset(id uint32, offset int64) {
	switch id {
	case ebml.IDSeekHead:
		n.SeekHeadOffset = offset
	case ebml.IDInfo:
		n.InfoOffset = offset
	case ebml.IDTracks:
		n.TracksOffset = offset
	case ebml.IDCues:
		n.CuesOffset = offset
	case ebml.IDTags:
		n.TagsOffset = offset
	case ebml.IDChapters:
		n.ChaptersOffset = offset
	case ebml.IDAttachments:
		n.AttachmentsOffset = offset
	}
}

func (n *Navigator) resolveSeekHead() error {
	if n.SeekHeadOffset == absent {
		return nil
	}
	entries, err := readSeekEntries(n.r, n.SeekHeadOffset)
	if err != nil {
		return err
	}
	for _, e := range entries {
		abs := n.Segment.DataOffset + int64(e.Position)
		n.setOffset(e.ID, abs)
	}
	return nil
}

// FindElement streams the children of parent looking for the first
// one with ID == targetID, skipping everything else (including
// Clusters of known size) without decoding their content.
func (n *Navigator) FindElement(parent ebml.Header, targetID uint32) (ebml.Header, bool, error) {
	if _, err := n.r.Seek(parent.DataOffset, io.SeekStart); err != nil {
		return ebml.Header{}, false, err
	}
	for {
		atEnd, err := ebml.AtElementEnd(n.r, parent)
		if err != nil {
			return ebml.Header{}, false, err
		}
		if atEnd {
			return ebml.Header{}, false, nil
		}
		h, err := ebml.ReadHeader(n.r)
		if err != nil {
			return ebml.Header{}, false, err
		}
		if h.ID == targetID {
			return h, true, nil
		}
		if h.SizeUnknown {
			return ebml.Header{}, false, nil
		}
		if err := ebml.SkipElement(n.r, h); err != nil {
			return ebml.Header{}, false, err
		}
	}
}

// Cache returns the navigator's bounded top-level element position cache.
func (n *Navigator) Cache() *Cache {
	return n.cache
}

// Reset clears all resolved top-level offsets, the largest-Void record
// and the position cache. The Header and Segment fields are left as
// they are.
func (n *Navigator) Reset() {
	n.SeekHeadOffset = absent
	n.InfoOffset = absent
	n.TracksOffset = absent
	n.CuesOffset = absent
	n.TagsOffset = absent
	n.ChaptersOffset = absent
	n.AttachmentsOffset = absent
	n.FirstClusterOffset = absent
	n.LargestVoid = Void{}
	n.cache.Clear()
}
