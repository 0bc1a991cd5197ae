// Package mkvtag reads and edits Matroska/WebM Tags metadata in place,
// without rewriting the file's media payload.
package mkvtag

import (
	"io"
	"strings"

	"github.com/mkvtag/mkvtag/ebml"
	"github.com/mkvtag/mkvtag/matroska"
	"github.com/mkvtag/mkvtag/stream"
	"github.com/mkvtag/mkvtag/tag"
)

// Context owns one open file, its parsed structure, and an optional
// cached tag collection. It is not safe for concurrent use from
// multiple goroutines without external synchronization.
type Context struct {
	path string
	s    *stream.Stream
	nav  *matroska.Navigator

	opts *OpenOptions

	cached *tag.Collection
}

// Open opens path read-only.
func Open(path string, opts ...Option) (*Context, error) {
	return open(path, false, opts...)
}

// OpenRW opens path for reading and writing.
func OpenRW(path string, opts ...Option) (*Context, error) {
	return open(path, true, opts...)
}

func open(path string, writable bool, opts ...Option) (*Context, error) {
	var s *stream.Stream
	var err error
	if writable {
		s, err = stream.OpenRW(path)
	} else {
		s, err = stream.Open(path)
	}
	if err != nil {
		return nil, classifyOpenError(err)
	}

	nav, err := matroska.Open(s)
	if err != nil {
		s.Close()
		return nil, classifyStructureError(err)
	}

	return &Context{
		path: path,
		s:    s,
		nav:  nav,
		opts: newOpenOptions(opts...),
	}, nil
}

func classifyOpenError(err error) error {
	return &Error{CodeIo, "opening file: " + err.Error()}
}

func classifyStructureError(err error) error {
	switch err {
	case matroska.ErrNotEBML:
		return ErrNotEBML
	case matroska.ErrNotMKV:
		return ErrNotMKV
	case matroska.ErrNoSegment:
		return ErrCorrupt
	default:
		return &Error{CodeCorrupt, "parsing structure: " + err.Error()}
	}
}

// IsOpen reports whether the context still owns an open file.
func (c *Context) IsOpen() bool {
	return c.s != nil
}

// Close releases the underlying file and invalidates the tag cache.
func (c *Context) Close() error {
	if c.s == nil {
		return ErrNotOpen
	}
	c.cached = nil
	err := c.s.Close()
	c.s = nil
	c.nav = nil
	if err != nil {
		return &Error{CodeIo, "closing file: " + err.Error()}
	}
	return nil
}

// ReadTags returns the file's tag collection, parsing it and caching
// the result on first call. The returned value is owned by the
// Context and invalidated by Close and by every write; callers who
// need to mutate independently should call Collection.Clone.
func (c *Context) ReadTags() (*tag.Collection, error) {
	if c.s == nil {
		return nil, ErrNotOpen
	}
	if c.cached != nil {
		return c.cached, nil
	}
	if c.nav.TagsOffset == matroska.Absent {
		return nil, ErrNoTags
	}
	if _, err := c.s.Seek(c.nav.TagsOffset, io.SeekStart); err != nil {
		return nil, &Error{CodeSeekFailed, err.Error()}
	}
	h, err := ebml.ReadHeader(c.s)
	if err != nil {
		return nil, &Error{CodeCorrupt, err.Error()}
	}
	coll, err := tag.Decode(c.s, h)
	if err != nil {
		return nil, &Error{CodeCorrupt, err.Error()}
	}
	c.cached = coll
	return coll, nil
}

// ReadTagString searches every tag and every simple tag at every
// target level (case-insensitive on name) and returns the first
// matching value.
func (c *Context) ReadTagString(name string) (string, error) {
	values, err := c.ReadTagStrings(name)
	if err != nil {
		return "", err
	}
	return values[0], nil
}

// ReadTagStringBounded behaves like ReadTagString but enforces maxSize
// as an upper bound on the returned value's length, mirroring the
// caller-owned fixed-size buffer the original API read into. maxSize
// <= 0 means unbounded, identical to ReadTagString. A match that would
// not fit in a buffer of that size (leaving room for a NUL
// terminator, matching ebml.DecodeString's own convention) returns
// ErrTagTooLarge instead of a truncated value.
func (c *Context) ReadTagStringBounded(name string, maxSize int) (string, error) {
	value, err := c.ReadTagString(name)
	if err != nil {
		return "", err
	}
	if maxSize > 0 && len(value) >= maxSize {
		return "", ErrTagTooLarge
	}
	return value, nil
}

// ReadTagStrings returns every value found under a simple tag whose
// name case-insensitively matches name, across every tag and target
// level, in file order. This is a supplemented multi-value read: the
// original single-value lookup only ever surfaced the first match.
func (c *Context) ReadTagStrings(name string) ([]string, error) {
	coll, err := c.ReadTags()
	if err != nil {
		return nil, err
	}
	var values []string
	for _, t := range coll.Tags {
		collectMatchingValues(t.SimpleTags, name, &values)
	}
	if len(values) == 0 {
		return nil, ErrTagNotFound
	}
	return values, nil
}

// collectMatchingValues walks only each tag's flat top-level SimpleTag
// list; it never descends into Nested.
func collectMatchingValues(simples []*tag.SimpleTag, name string, out *[]string) {
	for _, st := range simples {
		if strings.EqualFold(st.Name, name) && st.HasValue {
			*out = append(*out, st.Value)
		}
	}
}

// WriteTags serializes coll and commits it to disk via the placement
// planner, invalidating the tag cache and reloading the navigator's
// Tags bookkeeping on success. The scratch buffer holding the
// serialized bytes is drawn from and returned to the Context's
// BufferPool.
func (c *Context) WriteTags(coll *tag.Collection) error {
	if c.s == nil {
		return ErrNotOpen
	}
	if !c.s.IsWritable() {
		return ErrReadOnly
	}

	size, err := tag.Size(coll)
	if err != nil {
		return &Error{CodeInvalidArg, err.Error()}
	}
	scratch := c.opts.pool.Get(size)
	buf, err := tag.EncodeInto(coll, scratch)
	if err != nil {
		c.opts.pool.Put(scratch)
		return &Error{CodeInvalidArg, err.Error()}
	}

	p := &planner{s: c.s, nav: c.nav, path: c.path, log: c.opts.logger, pool: c.opts.pool}
	_, placeErr := p.place(buf)
	c.opts.pool.Put(buf)
	if placeErr != nil {
		if e, ok := placeErr.(*Error); ok {
			return e
		}
		return &Error{CodeWriteFailed, placeErr.Error()}
	}

	c.cached = nil
	return nil
}

// SetTagString clones the current collection and, at target type 50
// (ALBUM), updates every existing simple tag named name; if none
// match, it adds one to the first album-level Tag, creating one first
// if the collection has none. The result is committed via the
// planner. Passing value == "" removes every album-level simple tag
// with that name instead (see RemoveTag).
func (c *Context) SetTagString(name, value string) error {
	coll, err := c.currentOrEmptyCollection()
	if err != nil {
		return err
	}
	clone := coll.Clone()

	if value == "" {
		removeAlbumSimpleTag(clone, name)
		return c.WriteTags(clone)
	}

	updateAlbumSimpleTag(clone, name, value)
	return c.WriteTags(clone)
}

// RemoveTag is defined as SetTagString(name, "").
func (c *Context) RemoveTag(name string) error {
	return c.SetTagString(name, "")
}

func (c *Context) currentOrEmptyCollection() (*tag.Collection, error) {
	coll, err := c.ReadTags()
	if err == ErrNoTags {
		return tag.NewCollection(), nil
	}
	if err != nil {
		return nil, err
	}
	return coll, nil
}

// updateAlbumSimpleTag updates name on every matching SimpleTag within
// every album-level Tag — a Tag holding two same-named SimpleTags gets
// both updated, not just the first. If none match anywhere, it adds
// one to the first album-level Tag, creating one first if the
// collection has none.
func updateAlbumSimpleTag(coll *tag.Collection, name, value string) {
	var firstAlbum *tag.Tag
	matched := false
	for _, t := range coll.Tags {
		if t.Targets.EffectiveTargetType() != tag.TargetTypeAlbum {
			continue
		}
		if firstAlbum == nil {
			firstAlbum = t
		}
		for _, st := range t.SimpleTags {
			if strings.EqualFold(st.Name, name) {
				st.SetValue(value)
				matched = true
			}
		}
	}
	if matched {
		return
	}
	if firstAlbum == nil {
		firstAlbum = coll.AddTag(tag.TargetTypeAlbum)
	}
	firstAlbum.AddSimpleTag(name).SetValue(value)
}

// removeAlbumSimpleTag drops every top-level simple tag named name
// from every album-level Tag. Non-album Tags are left untouched, per
// the "no-op on non-album matches" rule.
func removeAlbumSimpleTag(coll *tag.Collection, name string) {
	for _, t := range coll.Tags {
		if t.Targets.EffectiveTargetType() != tag.TargetTypeAlbum {
			continue
		}
		kept := t.SimpleTags[:0]
		for _, st := range t.SimpleTags {
			if !strings.EqualFold(st.Name, name) {
				kept = append(kept, st)
			}
		}
		t.SimpleTags = kept
	}
}
