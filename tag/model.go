// Package tag models the Matroska Tags metadata tree — a collection
// of tags, each binding a Targets descriptor to a list of simple
// name/value tags — independent of how that tree is read from or
// written to a file.
package tag

// Default target type when a Tag's Targets omits TargetTypeValue.
const DefaultTargetType = 50

// Recognized TargetTypeValue levels.
const (
	TargetTypeShot       = 10
	TargetTypeScene      = 20
	TargetTypeTrack      = 30
	TargetTypePart       = 40
	TargetTypeAlbum      = 50
	TargetTypeSeason     = 60
	TargetTypeCollection = 70
)

// Targets describes what a Tag applies to: a target-type level plus
// the tracks/editions/chapters/attachments it is scoped to.
type Targets struct {
	TargetType    uint64
	TargetTypeStr string

	TrackUIDs      []uint64
	EditionUIDs    []uint64
	ChapterUIDs    []uint64
	AttachmentUIDs []uint64
}

// EffectiveTargetType returns TargetType, or DefaultTargetType when
// TargetType is zero (unset).
func (t Targets) EffectiveTargetType() uint64 {
	if t.TargetType == 0 {
		return DefaultTargetType
	}
	return t.TargetType
}

func cloneUint64s(s []uint64) []uint64 {
	if s == nil {
		return nil
	}
	out := make([]uint64, len(s))
	copy(out, s)
	return out
}

func (t Targets) clone() Targets {
	c := t
	c.TrackUIDs = cloneUint64s(t.TrackUIDs)
	c.EditionUIDs = cloneUint64s(t.EditionUIDs)
	c.ChapterUIDs = cloneUint64s(t.ChapterUIDs)
	c.AttachmentUIDs = cloneUint64s(t.AttachmentUIDs)
	return c
}

// SimpleTag is a name/value pair, optionally scoped by language,
// carrying binary data instead of or in addition to a string value,
// and optionally nesting further SimpleTags.
type SimpleTag struct {
	Name       string
	Value      string
	HasValue   bool
	Binary     []byte
	Language   string
	IsDefault  bool
	Nested     []*SimpleTag
}

// NewSimpleTag returns a SimpleTag with IsDefault true, matching the
// format's default when TagDefault is omitted.
func NewSimpleTag(name string) *SimpleTag {
	return &SimpleTag{Name: name, IsDefault: true}
}

// SetValue sets the tag's string value.
func (st *SimpleTag) SetValue(value string) *SimpleTag {
	st.Value = value
	st.HasValue = true
	return st
}

// SetBinary sets the tag's binary payload.
func (st *SimpleTag) SetBinary(data []byte) *SimpleTag {
	st.Binary = data
	return st
}

// SetLanguage sets the tag's language code (e.g. "eng", "und").
func (st *SimpleTag) SetLanguage(lang string) *SimpleTag {
	st.Language = lang
	return st
}

// AddNested appends a nested SimpleTag and returns it.
func (st *SimpleTag) AddNested(name string) *SimpleTag {
	child := NewSimpleTag(name)
	st.Nested = append(st.Nested, child)
	return child
}

func (st *SimpleTag) clone() *SimpleTag {
	if st == nil {
		return nil
	}
	c := &SimpleTag{
		Name:      st.Name,
		Value:     st.Value,
		HasValue:  st.HasValue,
		Language:  st.Language,
		IsDefault: st.IsDefault,
	}
	if st.Binary != nil {
		c.Binary = append([]byte(nil), st.Binary...)
	}
	for _, n := range st.Nested {
		c.Nested = append(c.Nested, n.clone())
	}
	return c
}

// Tag binds a Targets descriptor to an ordered list of top-level
// SimpleTags.
type Tag struct {
	Targets    Targets
	SimpleTags []*SimpleTag
}

// NewTag returns a Tag with the given target type (0 selects the
// format default of 50/ALBUM on serialization).
func NewTag(targetType uint64) *Tag {
	return &Tag{Targets: Targets{TargetType: targetType}}
}

// AddSimpleTag appends a top-level SimpleTag and returns it.
func (t *Tag) AddSimpleTag(name string) *SimpleTag {
	st := NewSimpleTag(name)
	t.SimpleTags = append(t.SimpleTags, st)
	return st
}

// AddTrackUID appends a track UID to the Tag's Targets.
func (t *Tag) AddTrackUID(uid uint64) *Tag {
	t.Targets.TrackUIDs = append(t.Targets.TrackUIDs, uid)
	return t
}

// AddEditionUID appends an edition UID to the Tag's Targets.
func (t *Tag) AddEditionUID(uid uint64) *Tag {
	t.Targets.EditionUIDs = append(t.Targets.EditionUIDs, uid)
	return t
}

// AddChapterUID appends a chapter UID to the Tag's Targets.
func (t *Tag) AddChapterUID(uid uint64) *Tag {
	t.Targets.ChapterUIDs = append(t.Targets.ChapterUIDs, uid)
	return t
}

// AddAttachmentUID appends an attachment UID to the Tag's Targets.
func (t *Tag) AddAttachmentUID(uid uint64) *Tag {
	t.Targets.AttachmentUIDs = append(t.Targets.AttachmentUIDs, uid)
	return t
}

// SetTargetTypeStr sets the Targets' free-form TargetType string.
func (t *Tag) SetTargetTypeStr(s string) *Tag {
	t.Targets.TargetTypeStr = s
	return t
}

func (t *Tag) clone() *Tag {
	c := &Tag{Targets: t.Targets.clone()}
	for _, st := range t.SimpleTags {
		c.SimpleTags = append(c.SimpleTags, st.clone())
	}
	return c
}

// Collection is an ordered sequence of Tags, the in-memory form of a
// Matroska Tags element.
type Collection struct {
	Tags []*Tag
}

// NewCollection returns an empty Collection.
func NewCollection() *Collection {
	return &Collection{}
}

// AddTag appends a new Tag with the given target type and returns it.
func (c *Collection) AddTag(targetType uint64) *Tag {
	t := NewTag(targetType)
	c.Tags = append(c.Tags, t)
	return t
}

// Clone deep-copies the collection, including every Targets UID
// sequence and every SimpleTag field (value, binary, language,
// is_default, nested children). SetTagString uses this to produce a
// modified copy without mutating the caller's cached collection.
func (c *Collection) Clone() *Collection {
	if c == nil {
		return nil
	}
	out := &Collection{}
	for _, t := range c.Tags {
		out.Tags = append(out.Tags, t.clone())
	}
	return out
}
