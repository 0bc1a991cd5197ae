package tag

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/mkvtag/mkvtag/ebml"
)

type fileReader struct{ f *os.File }

func (fr *fileReader) Read(p []byte) (int, error) { return fr.f.Read(p) }
func (fr *fileReader) Seek(offset int64, whence int) (int64, error) {
	return fr.f.Seek(offset, whence)
}
func (fr *fileReader) Tell() (int64, error) {
	return fr.f.Seek(0, io.SeekCurrent)
}
func (fr *fileReader) Size() (int64, error) {
	info, err := fr.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func newTestReader(t *testing.T, content []byte) *fileReader {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tags.bin")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return &fileReader{f: f}
}

func buildSampleCollection() *Collection {
	coll := NewCollection()
	movie := coll.AddTag(TargetTypeAlbum)
	movie.AddTrackUID(1001)
	title := movie.AddSimpleTag("TITLE")
	title.SetValue("Big Buck Bunny").SetLanguage("eng")
	nested := title.AddNested("SORT_WITH")
	nested.SetValue("Buck Bunny, Big")

	other := coll.AddTag(TargetTypeTrack)
	other.AddTrackUID(2002)
	comment := other.AddSimpleTag("COMMENT")
	comment.IsDefault = false
	comment.SetBinary([]byte{0xDE, 0xAD})
	return coll
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	coll := buildSampleCollection()
	buf, err := Encode(coll)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	r := newTestReader(t, buf)
	h, err := ebml.ReadHeader(r)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h.ID != ebml.IDTags {
		t.Fatalf("expected Tags ID, got 0x%X", h.ID)
	}

	got, err := Decode(r, h)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got.Tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(got.Tags))
	}

	movie := got.Tags[0]
	if movie.Targets.EffectiveTargetType() != TargetTypeAlbum {
		t.Errorf("expected album target type, got %d", movie.Targets.EffectiveTargetType())
	}
	if len(movie.Targets.TrackUIDs) != 1 || movie.Targets.TrackUIDs[0] != 1001 {
		t.Errorf("expected TrackUID 1001, got %v", movie.Targets.TrackUIDs)
	}
	if len(movie.SimpleTags) != 1 || movie.SimpleTags[0].Name != "TITLE" {
		t.Fatalf("expected TITLE simple tag, got %+v", movie.SimpleTags)
	}
	title := movie.SimpleTags[0]
	if title.Value != "Big Buck Bunny" || title.Language != "eng" {
		t.Errorf("unexpected title fields: %+v", title)
	}
	if len(title.Nested) != 1 || title.Nested[0].Value != "Buck Bunny, Big" {
		t.Errorf("expected nested SORT_WITH tag, got %+v", title.Nested)
	}

	other := got.Tags[1]
	if len(other.SimpleTags) != 1 {
		t.Fatalf("expected 1 simple tag on second Tag, got %d", len(other.SimpleTags))
	}
	comment := other.SimpleTags[0]
	if comment.IsDefault {
		t.Errorf("expected IsDefault false round-tripped")
	}
	if len(comment.Binary) != 2 || comment.Binary[0] != 0xDE {
		t.Errorf("expected binary round-tripped, got %v", comment.Binary)
	}
}

func TestSizeMatchesEncodedLength(t *testing.T) {
	coll := buildSampleCollection()
	buf, err := Encode(coll)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	size, err := Size(coll)
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != len(buf) {
		t.Errorf("Size() = %d, but Encode produced %d bytes", size, len(buf))
	}
}

func TestEncodeRejectsEmptyName(t *testing.T) {
	coll := NewCollection()
	tagObj := coll.AddTag(TargetTypeAlbum)
	tagObj.AddSimpleTag("")
	if _, err := Encode(coll); err != ErrEmptyName {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}
}

func TestEncodeOmitsTagStringWhenUnset(t *testing.T) {
	coll := NewCollection()
	tagObj := coll.AddTag(TargetTypeAlbum)
	tagObj.AddSimpleTag("KEYWORD") // no value, no binary

	buf, err := Encode(coll)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	r := newTestReader(t, buf)
	h, _ := ebml.ReadHeader(r)
	got, err := Decode(r, h)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	st := got.Tags[0].SimpleTags[0]
	if st.HasValue {
		t.Errorf("expected HasValue false for a tag with no string content")
	}
}
