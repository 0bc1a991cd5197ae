package matroska

import (
	"io"

	"github.com/mkvtag/mkvtag/ebml"
)

// SeekEntry is one parsed Seek child of a SeekHead: the ID of the
// top-level element it indexes and its position relative to the
// Segment's data offset.
type SeekEntry struct {
	ID           uint32
	Position     uint64
	PositionLen  int   // encoded byte width of the SeekPosition content
	PositionOff  int64 // absolute file offset of the SeekPosition element's content
}

// BuildSeekEntry serializes one Seek master (SeekID + SeekPosition)
// for constructing a SeekHead. The planner never calls this: an
// existing SeekHead's Seek entries are only ever updated in place,
// never inserted, since inserting would shift every following
// element. It exists to let SeekHead round-trips be exercised in
// isolation without a full navigator.
func BuildSeekEntry(dst []byte, id uint32, position uint64) ([]byte, error) {
	idBytes := make([]byte, ebml.IDSize(id))
	v := id
	for i := len(idBytes) - 1; i >= 0; i-- {
		idBytes[i] = byte(v)
		v >>= 8
	}
	seekID, err := ebml.EncodeBinaryElement(nil, ebml.IDSeekID, idBytes)
	if err != nil {
		return nil, err
	}
	seekPos, err := ebml.EncodeUintElement(nil, ebml.IDSeekPos, position)
	if err != nil {
		return nil, err
	}
	content := append(seekID, seekPos...)
	dst, err = ebml.WriteMasterHeader(dst, ebml.IDSeek, len(content))
	if err != nil {
		return nil, err
	}
	return append(dst, content...), nil
}

// readSeekEntries parses the Seek children of the SeekHead master at
// the given absolute offset.
func readSeekEntries(r ebml.Reader, seekHeadOffset int64) ([]SeekEntry, error) {
	if _, err := r.Seek(seekHeadOffset, io.SeekStart); err != nil {
		return nil, err
	}
	head, err := ebml.ReadHeader(r)
	if err != nil {
		return nil, err
	}
	if head.ID != ebml.IDSeekHead {
		return nil, nil
	}

	var entries []SeekEntry
	for {
		atEnd, err := ebml.AtElementEnd(r, head)
		if err != nil {
			return nil, err
		}
		if atEnd {
			break
		}
		seek, err := ebml.ReadHeader(r)
		if err != nil {
			return nil, err
		}
		if seek.ID != ebml.IDSeek {
			if seek.SizeUnknown {
				break
			}
			if err := ebml.SkipElement(r, seek); err != nil {
				return nil, err
			}
			continue
		}
		entry, err := parseSeekEntry(r, seek)
		if err != nil {
			return nil, err
		}
		if entry.ID != 0 {
			entries = append(entries, entry)
		}
		if err := ebml.SkipElement(r, seek); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func parseSeekEntry(r ebml.Reader, seek ebml.Header) (SeekEntry, error) {
	var entry SeekEntry
	for {
		atEnd, err := ebml.AtElementEnd(r, seek)
		if err != nil {
			return entry, err
		}
		if atEnd {
			break
		}
		h, err := ebml.ReadHeader(r)
		if err != nil {
			return entry, err
		}
		switch h.ID {
		case ebml.IDSeekID:
			raw, err := ebml.DecodeBinary(r, h)
			if err != nil {
				return entry, err
			}
			entry.ID = decodeRawID(raw)
		case ebml.IDSeekPos:
			v, err := ebml.DecodeUint(r, h)
			if err != nil {
				return entry, err
			}
			entry.Position = v
			entry.PositionLen = int(h.Size)
			entry.PositionOff = h.DataOffset
		}
		if err := ebml.SkipElement(r, h); err != nil {
			return entry, err
		}
	}
	return entry, nil
}

// decodeRawID interprets a SeekID's raw big-endian bytes (which are
// simply an ID's byte encoding, not a VINT with a marker to strip) as
// an element ID.
func decodeRawID(raw []byte) uint32 {
	var v uint32
	for _, b := range raw {
		v = (v << 8) | uint32(b)
	}
	return v
}

// UpdateSeekEntry rewrites the SeekPosition content of the SeekHead's
// Seek entry for targetID in place, preserving its encoded byte
// width. Returns ok == false (without error) when no such entry
// exists, or when the new position does not fit in the entry's
// existing width — both are silently-skippable per the placement
// planner's SeekHead update policy.
func UpdateSeekEntry(rw ebml.Reader, w io.Writer, seekHeadOffset int64, targetID uint32, newPosition uint64) (ok bool, err error) {
	entries, err := readSeekEntries(rw, seekHeadOffset)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.ID != targetID {
			continue
		}
		buf, err := ebml.EncodeUintFixed(newPosition, e.PositionLen)
		if err != nil {
			return false, nil
		}
		if _, err := rw.Seek(e.PositionOff, io.SeekStart); err != nil {
			return false, err
		}
		if _, err := w.Write(buf); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}
