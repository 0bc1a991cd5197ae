package mkvtag

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mkvtag/mkvtag/ebml"
	"github.com/mkvtag/mkvtag/tag"
)

// buildFixture writes an EBML header with the given DocType, a
// Segment of known size containing an Info element and a ~4 KiB Void,
// and returns the path to the resulting file.
func buildFixture(t *testing.T, docType string) string {
	t.Helper()

	header, _ := ebml.EncodeStringElement(nil, ebml.IDDocType, docType)
	ver, _ := ebml.EncodeUintElement(nil, ebml.IDEBMLVersion, 1)
	header = append(header, ver...)
	ebmlBuf, _ := ebml.WriteMasterHeader(nil, ebml.IDEBML, len(header))
	ebmlBuf = append(ebmlBuf, header...)

	info, _ := ebml.EncodeUintElement(nil, ebml.IDTimecodeScale, 1000000)
	infoElem, _ := ebml.WriteMasterHeader(nil, ebml.IDInfo, len(info))
	infoElem = append(infoElem, info...)

	voidBuf, err := ebml.AppendVoid(nil, 4096)
	if err != nil {
		t.Fatalf("AppendVoid: %v", err)
	}

	segmentContent := append(append([]byte{}, infoElem...), voidBuf...)
	segmentElem, _ := ebml.WriteMasterHeader(nil, ebml.IDSegment, len(segmentContent))
	segmentElem = append(segmentElem, segmentContent...)

	buf := append(ebmlBuf, segmentElem...)
	path := filepath.Join(t.TempDir(), "fixture.mkv")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestS1EmptyReadHasNoTags(t *testing.T) {
	path := buildFixture(t, "matroska")
	ctx, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ctx.Close()

	if _, err := ctx.ReadTagString("TITLE"); err != ErrNoTags {
		t.Errorf("expected ErrNoTags, got %v", err)
	}
}

func TestS2SetAndReadBack(t *testing.T) {
	path := buildFixture(t, "matroska")
	runSetAndReadBack(t, path)
}

func runSetAndReadBack(t *testing.T, path string) {
	t.Helper()
	ctx, err := OpenRW(path)
	if err != nil {
		t.Fatalf("OpenRW: %v", err)
	}
	fields := map[string]string{
		"TITLE":         "Test Title",
		"ARTIST":        "Test Artist",
		"ALBUM":         "Test Album",
		"DATE_RELEASED": "2025",
	}
	for _, name := range []string{"TITLE", "ARTIST", "ALBUM", "DATE_RELEASED"} {
		if err := ctx.SetTagString(name, fields[name]); err != nil {
			t.Fatalf("SetTagString(%s): %v", name, err)
		}
	}
	if err := ctx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ro, err := Open(path)
	if err != nil {
		t.Fatalf("re-Open: %v", err)
	}
	defer ro.Close()
	for name, want := range fields {
		got, err := ro.ReadTagString(name)
		if err != nil {
			t.Fatalf("ReadTagString(%s): %v", name, err)
		}
		if got != want {
			t.Errorf("%s: expected %q, got %q", name, want, got)
		}
	}
}

func TestS3UpdateInPlace(t *testing.T) {
	path := buildFixture(t, "matroska")
	runSetAndReadBack(t, path)

	ctx, err := OpenRW(path)
	if err != nil {
		t.Fatalf("OpenRW: %v", err)
	}
	if err := ctx.SetTagString("TITLE", "Updated Title"); err != nil {
		t.Fatalf("SetTagString: %v", err)
	}
	if err := ctx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ro, err := Open(path)
	if err != nil {
		t.Fatalf("re-Open: %v", err)
	}
	defer ro.Close()
	got, err := ro.ReadTagString("TITLE")
	if err != nil {
		t.Fatalf("ReadTagString: %v", err)
	}
	if got != "Updated Title" {
		t.Errorf("expected 'Updated Title', got %q", got)
	}
}

func TestS4Remove(t *testing.T) {
	path := buildFixture(t, "matroska")
	runSetAndReadBack(t, path)

	ctx, err := OpenRW(path)
	if err != nil {
		t.Fatalf("OpenRW: %v", err)
	}
	if err := ctx.RemoveTag("DATE_RELEASED"); err != nil {
		t.Fatalf("RemoveTag: %v", err)
	}
	if err := ctx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ro, err := Open(path)
	if err != nil {
		t.Fatalf("re-Open: %v", err)
	}
	defer ro.Close()
	if _, err := ro.ReadTagString("DATE_RELEASED"); err != ErrTagNotFound {
		t.Errorf("expected ErrTagNotFound, got %v", err)
	}
	if got, err := ro.ReadTagString("TITLE"); err != nil || got != "Test Title" {
		t.Errorf("expected TITLE to survive removal of DATE_RELEASED, got %q err=%v", got, err)
	}
}

func TestS5CollectionWrite(t *testing.T) {
	path := buildFixture(t, "matroska")
	ctx, err := OpenRW(path)
	if err != nil {
		t.Fatalf("OpenRW: %v", err)
	}

	coll := tag.NewCollection()
	album := coll.AddTag(tag.TargetTypeAlbum)
	album.AddSimpleTag("TITLE").SetValue("Collection Title")
	album.AddSimpleTag("ARTIST").SetValue("Collection Artist")
	track := coll.AddTag(tag.TargetTypeTrack)
	track.AddTrackUID(1)
	track.AddSimpleTag("COMMENT").SetValue("first track")

	if err := ctx.WriteTags(coll); err != nil {
		t.Fatalf("WriteTags: %v", err)
	}
	if err := ctx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ro, err := Open(path)
	if err != nil {
		t.Fatalf("re-Open: %v", err)
	}
	defer ro.Close()

	got, err := ro.ReadTags()
	if err != nil {
		t.Fatalf("ReadTags: %v", err)
	}
	if len(got.Tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(got.Tags))
	}
	if v, err := ro.ReadTagString("ARTIST"); err != nil || v != "Collection Artist" {
		t.Errorf("expected ARTIST=Collection Artist, got %q err=%v", v, err)
	}
	if v, err := ro.ReadTagString("COMMENT"); err != nil || v != "first track" {
		t.Errorf("expected COMMENT=first track, got %q err=%v", v, err)
	}
}

func TestS6ReadOnlyGuard(t *testing.T) {
	path := buildFixture(t, "matroska")
	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	ctx, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ctx.Close()

	if err := ctx.SetTagString("TITLE", "X"); err != ErrReadOnly {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(after) != string(original) {
		t.Errorf("expected file bytes unchanged after a rejected read-only write")
	}
}

func TestS7WebmParity(t *testing.T) {
	path := buildFixture(t, "webm")
	runSetAndReadBack(t, path)
}

func TestS8RejectsNonMatroska(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("this is just plain text, not EBML at all"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Open(path); err != ErrNotEBML {
		t.Errorf("expected ErrNotEBML, got %v", err)
	}
}

func TestReadTagStringIsCaseInsensitive(t *testing.T) {
	path := buildFixture(t, "matroska")
	ctx, err := OpenRW(path)
	if err != nil {
		t.Fatalf("OpenRW: %v", err)
	}
	if err := ctx.SetTagString("Title", "Case Test"); err != nil {
		t.Fatalf("SetTagString: %v", err)
	}
	got, err := ctx.ReadTagString("tItLe")
	if err != nil {
		t.Fatalf("ReadTagString: %v", err)
	}
	if got != "Case Test" {
		t.Errorf("expected case-insensitive match, got %q", got)
	}
	ctx.Close()
}

func TestReadTagStringBoundedRejectsOversizedValue(t *testing.T) {
	path := buildFixture(t, "matroska")
	ctx, err := OpenRW(path)
	if err != nil {
		t.Fatalf("OpenRW: %v", err)
	}
	if err := ctx.SetTagString("TITLE", "a fairly long title value"); err != nil {
		t.Fatalf("SetTagString: %v", err)
	}
	ctx.Close()

	ro, err := Open(path)
	if err != nil {
		t.Fatalf("re-Open: %v", err)
	}
	defer ro.Close()

	if _, err := ro.ReadTagStringBounded("TITLE", 4); err != ErrTagTooLarge {
		t.Errorf("expected ErrTagTooLarge, got %v", err)
	}
	got, err := ro.ReadTagStringBounded("TITLE", 0)
	if err != nil || got != "a fairly long title value" {
		t.Errorf("expected unbounded read to pass through, got %q err=%v", got, err)
	}
}

func TestSetTagStringUpdatesEveryMatchWithinOneTag(t *testing.T) {
	path := buildFixture(t, "matroska")
	ctx, err := OpenRW(path)
	if err != nil {
		t.Fatalf("OpenRW: %v", err)
	}

	coll := tag.NewCollection()
	album := coll.AddTag(tag.TargetTypeAlbum)
	album.AddSimpleTag("GENRE").SetValue("Rock")
	album.AddSimpleTag("GENRE").SetValue("Pop")
	if err := ctx.WriteTags(coll); err != nil {
		t.Fatalf("WriteTags: %v", err)
	}

	if err := ctx.SetTagString("GENRE", "Jazz"); err != nil {
		t.Fatalf("SetTagString: %v", err)
	}
	if err := ctx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ro, err := Open(path)
	if err != nil {
		t.Fatalf("re-Open: %v", err)
	}
	defer ro.Close()

	values, err := ro.ReadTagStrings("GENRE")
	if err != nil {
		t.Fatalf("ReadTagStrings: %v", err)
	}
	if len(values) != 2 || values[0] != "Jazz" || values[1] != "Jazz" {
		t.Errorf("expected both GENRE simple tags updated to Jazz, got %v", values)
	}
}

func TestStrategy1DoesNotChangeFileSize(t *testing.T) {
	path := buildFixture(t, "matroska")
	ctx, err := OpenRW(path)
	if err != nil {
		t.Fatalf("OpenRW: %v", err)
	}
	if err := ctx.SetTagString("TITLE", "A"); err != nil {
		t.Fatalf("SetTagString: %v", err)
	}
	sizeAfterFirst, _ := os.Stat(path)

	if err := ctx.SetTagString("TITLE", "B"); err != nil {
		t.Fatalf("SetTagString second: %v", err)
	}
	sizeAfterSecond, _ := os.Stat(path)
	ctx.Close()

	if sizeAfterFirst.Size() != sizeAfterSecond.Size() {
		t.Errorf("expected file size unchanged by an in-place update, got %d then %d",
			sizeAfterFirst.Size(), sizeAfterSecond.Size())
	}
}
