package tag

import (
	"errors"
	"io"

	"github.com/mkvtag/mkvtag/ebml"
)

// ErrEmptyName is returned when serializing a SimpleTag whose Name is empty.
var ErrEmptyName = errors.New("tag: simple tag name must not be empty")

// Decode parses the children of a Tags master element (already
// positioned via header) into a Collection.
func Decode(r ebml.Reader, tagsHeader ebml.Header) (*Collection, error) {
	if _, err := r.Seek(tagsHeader.DataOffset, io.SeekStart); err != nil {
		return nil, err
	}
	coll := NewCollection()
	for {
		atEnd, err := ebml.AtElementEnd(r, tagsHeader)
		if err != nil {
			return nil, err
		}
		if atEnd {
			break
		}
		h, err := ebml.ReadHeader(r)
		if err != nil {
			return nil, err
		}
		if h.ID == ebml.IDTag {
			t, err := decodeTag(r, h)
			if err != nil {
				return nil, err
			}
			coll.Tags = append(coll.Tags, t)
		}
		if h.SizeUnknown {
			break
		}
		if err := ebml.SkipElement(r, h); err != nil {
			return nil, err
		}
	}
	return coll, nil
}

func decodeTag(r ebml.Reader, tagHeader ebml.Header) (*Tag, error) {
	t := &Tag{}
	if _, err := r.Seek(tagHeader.DataOffset, io.SeekStart); err != nil {
		return nil, err
	}
	for {
		atEnd, err := ebml.AtElementEnd(r, tagHeader)
		if err != nil {
			return nil, err
		}
		if atEnd {
			break
		}
		h, err := ebml.ReadHeader(r)
		if err != nil {
			return nil, err
		}
		switch h.ID {
		case ebml.IDTargets:
			targets, err := decodeTargets(r, h)
			if err != nil {
				return nil, err
			}
			t.Targets = targets
		case ebml.IDSimpleTag:
			st, err := decodeSimpleTag(r, h)
			if err != nil {
				return nil, err
			}
			t.SimpleTags = append(t.SimpleTags, st)
		}
		if h.SizeUnknown {
			break
		}
		if err := ebml.SkipElement(r, h); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func decodeTargets(r ebml.Reader, targetsHeader ebml.Header) (Targets, error) {
	var tg Targets
	if _, err := r.Seek(targetsHeader.DataOffset, io.SeekStart); err != nil {
		return tg, err
	}
	for {
		atEnd, err := ebml.AtElementEnd(r, targetsHeader)
		if err != nil {
			return tg, err
		}
		if atEnd {
			break
		}
		h, err := ebml.ReadHeader(r)
		if err != nil {
			return tg, err
		}
		switch h.ID {
		case ebml.IDTargetTypeValue:
			v, err := ebml.DecodeUint(r, h)
			if err != nil {
				return tg, err
			}
			tg.TargetType = v
		case ebml.IDTargetType:
			s, err := ebml.DecodeString(r, h, 0)
			if err != nil {
				return tg, err
			}
			tg.TargetTypeStr = s
		case ebml.IDTagTrackUID:
			v, err := ebml.DecodeUint(r, h)
			if err != nil {
				return tg, err
			}
			tg.TrackUIDs = append(tg.TrackUIDs, v)
		case ebml.IDTagEditionUID:
			v, err := ebml.DecodeUint(r, h)
			if err != nil {
				return tg, err
			}
			tg.EditionUIDs = append(tg.EditionUIDs, v)
		case ebml.IDTagChapterUID:
			v, err := ebml.DecodeUint(r, h)
			if err != nil {
				return tg, err
			}
			tg.ChapterUIDs = append(tg.ChapterUIDs, v)
		case ebml.IDTagAttachmentUID:
			v, err := ebml.DecodeUint(r, h)
			if err != nil {
				return tg, err
			}
			tg.AttachmentUIDs = append(tg.AttachmentUIDs, v)
		}
		if h.SizeUnknown {
			break
		}
		if err := ebml.SkipElement(r, h); err != nil {
			return tg, err
		}
	}
	return tg, nil
}

func decodeSimpleTag(r ebml.Reader, stHeader ebml.Header) (*SimpleTag, error) {
	st := &SimpleTag{IsDefault: true}
	if _, err := r.Seek(stHeader.DataOffset, io.SeekStart); err != nil {
		return nil, err
	}
	for {
		atEnd, err := ebml.AtElementEnd(r, stHeader)
		if err != nil {
			return nil, err
		}
		if atEnd {
			break
		}
		h, err := ebml.ReadHeader(r)
		if err != nil {
			return nil, err
		}
		switch h.ID {
		case ebml.IDTagName:
			s, err := ebml.DecodeString(r, h, 0)
			if err != nil {
				return nil, err
			}
			st.Name = s
		case ebml.IDTagString:
			s, err := ebml.DecodeString(r, h, 0)
			if err != nil {
				return nil, err
			}
			st.Value = s
			st.HasValue = true
		case ebml.IDTagBinary:
			b, err := ebml.DecodeBinary(r, h)
			if err != nil {
				return nil, err
			}
			st.Binary = b
		case ebml.IDTagLanguage, ebml.IDTagLanguageBCP47:
			// Whichever appears last in file order wins, matching
			// the plain overwrite-on-decode loop above.
			s, err := ebml.DecodeString(r, h, 0)
			if err != nil {
				return nil, err
			}
			st.Language = s
		case ebml.IDTagDefault:
			v, err := ebml.DecodeUint(r, h)
			if err != nil {
				return nil, err
			}
			st.IsDefault = v != 0
		case ebml.IDSimpleTag:
			nested, err := decodeSimpleTag(r, h)
			if err != nil {
				return nil, err
			}
			st.Nested = append(st.Nested, nested)
		}
		if h.SizeUnknown {
			break
		}
		if err := ebml.SkipElement(r, h); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// Encode serializes coll into a complete Tags element (ID + size +
// content).
func Encode(coll *Collection) ([]byte, error) {
	return EncodeInto(coll, nil)
}

// EncodeInto is Encode but appends into dst's backing array (reset to
// length 0) instead of always allocating fresh, so a caller drawing
// scratch buffers from a pool can reuse one across writes.
func EncodeInto(coll *Collection, dst []byte) ([]byte, error) {
	var content []byte
	for _, t := range coll.Tags {
		tagBytes, err := encodeTag(t)
		if err != nil {
			return nil, err
		}
		content = append(content, tagBytes...)
	}
	dst, err := ebml.WriteMasterHeader(dst[:0], ebml.IDTags, len(content))
	if err != nil {
		return nil, err
	}
	return append(dst, content...), nil
}

// Size returns the total encoded size of coll's Tags element without
// allocating the encoded bytes, for planner slot-fit checks.
func Size(coll *Collection) (int, error) {
	total := 0
	for _, t := range coll.Tags {
		n, err := tagSize(t)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return ebml.MasterHeaderSize(ebml.IDTags, total) + total, nil
}

func encodeTag(t *Tag) ([]byte, error) {
	var content []byte
	targetsBytes, err := encodeTargets(t.Targets)
	if err != nil {
		return nil, err
	}
	content = append(content, targetsBytes...)
	for _, st := range t.SimpleTags {
		stBytes, err := encodeSimpleTag(st)
		if err != nil {
			return nil, err
		}
		content = append(content, stBytes...)
	}
	dst, err := ebml.WriteMasterHeader(nil, ebml.IDTag, len(content))
	if err != nil {
		return nil, err
	}
	return append(dst, content...), nil
}

func tagSize(t *Tag) (int, error) {
	n, err := targetsSize(t.Targets)
	if err != nil {
		return 0, err
	}
	for _, st := range t.SimpleTags {
		m, err := simpleTagSize(st)
		if err != nil {
			return 0, err
		}
		n += m
	}
	return ebml.MasterHeaderSize(ebml.IDTag, n) + n, nil
}

func encodeTargets(tg Targets) ([]byte, error) {
	var content []byte
	bytes, err := ebml.EncodeUintElement(nil, ebml.IDTargetTypeValue, tg.EffectiveTargetType())
	if err != nil {
		return nil, err
	}
	content = append(content, bytes...)
	if tg.TargetTypeStr != "" {
		bytes, err = ebml.EncodeStringElement(nil, ebml.IDTargetType, tg.TargetTypeStr)
		if err != nil {
			return nil, err
		}
		content = append(content, bytes...)
	}
	for _, uid := range tg.TrackUIDs {
		bytes, err = ebml.EncodeUintElement(nil, ebml.IDTagTrackUID, uid)
		if err != nil {
			return nil, err
		}
		content = append(content, bytes...)
	}
	for _, uid := range tg.EditionUIDs {
		bytes, err = ebml.EncodeUintElement(nil, ebml.IDTagEditionUID, uid)
		if err != nil {
			return nil, err
		}
		content = append(content, bytes...)
	}
	for _, uid := range tg.ChapterUIDs {
		bytes, err = ebml.EncodeUintElement(nil, ebml.IDTagChapterUID, uid)
		if err != nil {
			return nil, err
		}
		content = append(content, bytes...)
	}
	for _, uid := range tg.AttachmentUIDs {
		bytes, err = ebml.EncodeUintElement(nil, ebml.IDTagAttachmentUID, uid)
		if err != nil {
			return nil, err
		}
		content = append(content, bytes...)
	}
	dst, err := ebml.WriteMasterHeader(nil, ebml.IDTargets, len(content))
	if err != nil {
		return nil, err
	}
	return append(dst, content...), nil
}

func targetsSize(tg Targets) (int, error) {
	n := ebml.UintElementSize(ebml.IDTargetTypeValue, tg.EffectiveTargetType())
	if tg.TargetTypeStr != "" {
		n += ebml.StringElementSize(ebml.IDTargetType, tg.TargetTypeStr)
	}
	for _, uid := range tg.TrackUIDs {
		n += ebml.UintElementSize(ebml.IDTagTrackUID, uid)
	}
	for _, uid := range tg.EditionUIDs {
		n += ebml.UintElementSize(ebml.IDTagEditionUID, uid)
	}
	for _, uid := range tg.ChapterUIDs {
		n += ebml.UintElementSize(ebml.IDTagChapterUID, uid)
	}
	for _, uid := range tg.AttachmentUIDs {
		n += ebml.UintElementSize(ebml.IDTagAttachmentUID, uid)
	}
	return ebml.MasterHeaderSize(ebml.IDTargets, n) + n, nil
}

func encodeSimpleTag(st *SimpleTag) ([]byte, error) {
	if st.Name == "" {
		return nil, ErrEmptyName
	}
	var content []byte
	bytes, err := ebml.EncodeStringElement(nil, ebml.IDTagName, st.Name)
	if err != nil {
		return nil, err
	}
	content = append(content, bytes...)
	if st.Language != "" {
		bytes, err = ebml.EncodeStringElement(nil, ebml.IDTagLanguage, st.Language)
		if err != nil {
			return nil, err
		}
		content = append(content, bytes...)
	}
	if !st.IsDefault {
		bytes, err = ebml.EncodeUintElement(nil, ebml.IDTagDefault, 0)
		if err != nil {
			return nil, err
		}
		content = append(content, bytes...)
	}
	if st.HasValue {
		bytes, err = ebml.EncodeStringElement(nil, ebml.IDTagString, st.Value)
		if err != nil {
			return nil, err
		}
		content = append(content, bytes...)
	}
	if st.Binary != nil {
		bytes, err = ebml.EncodeBinaryElement(nil, ebml.IDTagBinary, st.Binary)
		if err != nil {
			return nil, err
		}
		content = append(content, bytes...)
	}
	for _, nested := range st.Nested {
		bytes, err = encodeSimpleTag(nested)
		if err != nil {
			return nil, err
		}
		content = append(content, bytes...)
	}
	dst, err := ebml.WriteMasterHeader(nil, ebml.IDSimpleTag, len(content))
	if err != nil {
		return nil, err
	}
	return append(dst, content...), nil
}

func simpleTagSize(st *SimpleTag) (int, error) {
	if st.Name == "" {
		return 0, ErrEmptyName
	}
	n := ebml.StringElementSize(ebml.IDTagName, st.Name)
	if st.Language != "" {
		n += ebml.StringElementSize(ebml.IDTagLanguage, st.Language)
	}
	if !st.IsDefault {
		n += ebml.UintElementSize(ebml.IDTagDefault, 0)
	}
	if st.HasValue {
		n += ebml.StringElementSize(ebml.IDTagString, st.Value)
	}
	if st.Binary != nil {
		n += ebml.BinaryElementSize(ebml.IDTagBinary, st.Binary)
	}
	for _, nested := range st.Nested {
		m, err := simpleTagSize(nested)
		if err != nil {
			return 0, err
		}
		n += m
	}
	return ebml.MasterHeaderSize(ebml.IDSimpleTag, n) + n, nil
}
