package mkvtag

import (
	"io"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"
	"go.uber.org/zap"

	"github.com/mkvtag/mkvtag/ebml"
	"github.com/mkvtag/mkvtag/matroska"
	"github.com/mkvtag/mkvtag/stream"
)

// mountpointOf returns a path gopsutil's disk.Usage can resolve
// filesystem statistics for. disk.Usage accepts any directory on the
// target filesystem, not strictly a mount point, so the file's parent
// directory is sufficient.
func mountpointOf(path string) string {
	return filepath.Dir(path)
}

// diskSafetyMargin is added on top of the tags payload size before
// the Strategy 3 preflight check, so a nearly-full filesystem doesn't
// get to the edge of ENOSPC before the append write even starts.
const diskSafetyMargin = 64 * 1024

// planner orchestrates the three tag-placement strategies against an
// open stream and its navigator.
type planner struct {
	s    *stream.Stream
	nav  *matroska.Navigator
	path string
	log  Logger
	pool BufferPool
}

// place writes tagsBytes (a complete, already-serialized Tags
// element) to disk using the first strategy that fits, returning the
// absolute offset the Tags element now lives at. It commits with
// flush and updates the SeekHead's Tags entry when applicable. Any
// error from Strategy 1 or 2 falls through to the next strategy
// rather than aborting the write; only a Strategy 3 failure is
// returned to the caller.
func (p *planner) place(tagsBytes []byte) (int64, error) {
	w := len(tagsBytes)

	if p.nav.TagsOffset != matroska.Absent {
		if off, ok, err := p.strategy1(tagsBytes); err == nil && ok {
			return off, nil
		}
	}

	if p.nav.LargestVoid.Size > 0 {
		if off, ok, err := p.strategy2(tagsBytes); err == nil && ok {
			return off, nil
		}
	}

	return p.strategy3(tagsBytes, w)
}

// slotSize returns the total span available at the existing Tags
// offset: the Tags element itself, plus an immediately-following Void
// if present.
func (p *planner) slotSize() (int64, error) {
	if _, err := p.s.Seek(p.nav.TagsOffset, io.SeekStart); err != nil {
		return 0, err
	}
	tagsHeader, err := ebml.ReadHeader(p.s)
	if err != nil {
		return 0, err
	}
	slot := tagsHeader.EndOffset - p.nav.TagsOffset

	nextOff := tagsHeader.EndOffset
	if _, err := p.s.Seek(nextOff, io.SeekStart); err != nil {
		return 0, err
	}
	segmentEnd := p.nav.Segment.ContentEnd(mustSize(p.s))
	if nextOff < segmentEnd {
		next, err := ebml.ReadHeader(p.s)
		if err == nil && next.ID == ebml.IDVoid {
			slot += next.EndOffset - nextOff
		}
	}
	return slot, nil
}

func mustSize(s *stream.Stream) int64 {
	sz, _ := s.Size()
	return sz
}

// strategy1 reuses the existing Tags slot and any immediately adjacent
// Void.
func (p *planner) strategy1(tagsBytes []byte) (int64, bool, error) {
	slot, err := p.slotSize()
	if err != nil {
		return 0, false, err
	}
	w := int64(len(tagsBytes))
	if w > slot {
		return 0, false, nil
	}

	offset := p.nav.TagsOffset
	if _, err := p.s.Seek(offset, io.SeekStart); err != nil {
		return 0, false, err
	}
	if _, err := p.s.Write(tagsBytes); err != nil {
		return 0, false, err
	}

	remainder := slot - w
	if err := p.padRemainder(remainder); err != nil {
		return 0, false, err
	}
	p.invalidateVoidInRange(offset, offset+slot)

	if err := p.commit(offset); err != nil {
		return 0, false, err
	}
	if p.log != nil {
		p.log.Info("placement",
			zap.String("strategy", "existing_slot"),
			zap.Int64("bytes_written", w),
			zap.Int64("bytes_voided", remainder),
			zap.Int64("tags_offset", offset),
		)
	}
	return offset, true, nil
}

// invalidateVoidInRange clears the navigator's largest-void record if
// it falls inside [start, end) — a range this write has just
// overwritten with something other than a standalone Void.
func (p *planner) invalidateVoidInRange(start, end int64) {
	v := p.nav.LargestVoid
	if v.Size == 0 {
		return
	}
	if v.Offset >= start && v.Offset < end {
		p.nav.LargestVoid = matroska.Void{}
	}
}

// strategy2 writes into the largest recorded standalone Void.
func (p *planner) strategy2(tagsBytes []byte) (int64, bool, error) {
	w := int64(len(tagsBytes))
	if w > p.nav.LargestVoid.Size {
		return 0, false, nil
	}
	offset := p.nav.LargestVoid.Offset
	if _, err := p.s.Seek(offset, io.SeekStart); err != nil {
		return 0, false, err
	}
	if _, err := p.s.Write(tagsBytes); err != nil {
		return 0, false, err
	}
	remainder := p.nav.LargestVoid.Size - w
	if err := p.padRemainder(remainder); err != nil {
		return 0, false, err
	}
	if remainder >= 2 {
		p.nav.LargestVoid = matroska.Void{Offset: offset + w, Size: remainder}
	} else {
		p.nav.LargestVoid = matroska.Void{}
	}
	if err := p.commit(offset); err != nil {
		return 0, false, err
	}
	if p.log != nil {
		p.log.Info("placement",
			zap.String("strategy", "largest_void"),
			zap.Int64("bytes_written", w),
			zap.Int64("bytes_voided", remainder),
			zap.Int64("tags_offset", offset),
		)
	}
	return offset, true, nil
}

// strategy3 appends the Tags element at the end of the Segment's
// declared content, patches a known Segment size VINT in place
// (returning ErrNoSpace when the new size does not fit its existing
// width), and voids out any previous Tags element.
func (p *planner) strategy3(tagsBytes []byte, w int) (int64, error) {
	if err := p.preflightDiskSpace(w); err != nil {
		return 0, err
	}

	fileSize := mustSize(p.s)
	appendOffset := p.nav.Segment.ContentEnd(fileSize)

	if !p.nav.Segment.UnknownSize {
		newSize := p.nav.Segment.Size + uint64(w)
		sizeFieldOffset := p.nav.Segment.Offset + int64(p.nav.Segment.IDLen)
		scratch := p.pool.Get(p.nav.Segment.SizeLen)
		buf, err := ebml.VintEncodeFixed(scratch, newSize, p.nav.Segment.SizeLen)
		if err != nil {
			p.pool.Put(scratch)
			return 0, ErrNoSpace
		}
		if _, err := p.s.Seek(sizeFieldOffset, io.SeekStart); err != nil {
			p.pool.Put(buf)
			return 0, err
		}
		_, err = p.s.Write(buf)
		p.pool.Put(buf)
		if err != nil {
			return 0, err
		}
		p.nav.Segment.Size = newSize
	}

	if _, err := p.s.Seek(appendOffset, io.SeekStart); err != nil {
		return 0, err
	}
	if _, err := p.s.Write(tagsBytes); err != nil {
		return 0, err
	}

	var voided int64
	if p.nav.TagsOffset != matroska.Absent && p.nav.TagsOffset != appendOffset {
		v, err := p.voidOutOldTags()
		if err != nil {
			return 0, err
		}
		voided = v
	}

	if err := p.commit(appendOffset); err != nil {
		return 0, err
	}
	if p.log != nil {
		p.log.Info("placement",
			zap.String("strategy", "append"),
			zap.Int64("bytes_written", int64(w)),
			zap.Int64("bytes_voided", voided),
			zap.Int64("tags_offset", appendOffset),
		)
	}
	return appendOffset, nil
}

func (p *planner) preflightDiskSpace(w int) error {
	usage, err := disk.Usage(mountpointOf(p.path))
	if err != nil {
		// A preflight failure is not itself a write failure; proceed
		// and let the actual write surface any real I/O error.
		return nil
	}
	if usage.Free < uint64(w)+diskSafetyMargin {
		return ErrIo
	}
	return nil
}

// voidOutOldTags overwrites the previous Tags element's span with a
// Void of identical total size, using a fresh header read since the
// Segment size patch above may have moved nothing but could have
// changed the navigator's cached span understanding. It returns the
// number of bytes voided.
func (p *planner) voidOutOldTags() (int64, error) {
	if _, err := p.s.Seek(p.nav.TagsOffset, io.SeekStart); err != nil {
		return 0, err
	}
	old, err := ebml.ReadHeader(p.s)
	if err != nil {
		return 0, err
	}
	total := old.EndOffset - p.nav.TagsOffset
	scratch := p.pool.Get(int(total))
	voidBuf, err := ebml.AppendVoid(scratch, int(total))
	if err != nil {
		p.pool.Put(scratch)
		return 0, err
	}
	if _, err := p.s.Seek(p.nav.TagsOffset, io.SeekStart); err != nil {
		p.pool.Put(voidBuf)
		return 0, err
	}
	_, err = p.s.Write(voidBuf)
	p.pool.Put(voidBuf)
	if err != nil {
		return 0, err
	}
	return total, nil
}

// padRemainder fills a leftover slot gap with a Void element, or with
// a single zero byte when the gap is exactly 1 byte (too small to
// hold even a minimal Void).
func (p *planner) padRemainder(remainder int64) error {
	if remainder == 0 {
		return nil
	}
	if remainder == 1 {
		_, err := p.s.Write([]byte{0})
		return err
	}
	scratch := p.pool.Get(int(remainder))
	voidBuf, err := ebml.AppendVoid(scratch, int(remainder))
	if err != nil {
		p.pool.Put(scratch)
		return err
	}
	_, err = p.s.Write(voidBuf)
	p.pool.Put(voidBuf)
	return err
}

// commit flushes the write and, on success, updates the SeekHead's
// Tags entry and the navigator's own bookkeeping.
func (p *planner) commit(newTagsOffset int64) error {
	if err := p.s.Flush(); err != nil {
		return err
	}
	p.nav.TagsOffset = newTagsOffset
	p.nav.Cache().Put(ebml.IDTags, newTagsOffset, 0)

	if p.nav.SeekHeadOffset == matroska.Absent {
		if p.log != nil {
			p.log.Info("seekhead_update",
				zap.Bool("updated", false),
				zap.String("reason", "no seekhead"),
			)
		}
		return nil
	}
	relative := uint64(newTagsOffset - p.nav.Segment.DataOffset)
	ok, err := matroska.UpdateSeekEntry(p.s, p.s, p.nav.SeekHeadOffset, ebml.IDTags, relative)
	if err != nil {
		return err
	}
	if !ok {
		if p.log != nil {
			p.log.Info("seekhead_update",
				zap.Bool("updated", false),
				zap.String("reason", "no matching seek entry"),
			)
		}
		return nil
	}
	if err := p.s.Flush(); err != nil {
		return err
	}
	if p.log != nil {
		p.log.Info("seekhead_update", zap.Bool("updated", true))
	}
	return nil
}
