package ebml

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

// fileReader adapts *os.File to the Reader interface for tests, the
// same shape stream.Stream implements against real files.
type fileReader struct{ f *os.File }

func (fr *fileReader) Read(p []byte) (int, error) { return fr.f.Read(p) }
func (fr *fileReader) Seek(offset int64, whence int) (int64, error) {
	return fr.f.Seek(offset, whence)
}
func (fr *fileReader) Tell() (int64, error) { return fr.f.Seek(0, io.SeekCurrent) }
func (fr *fileReader) Size() (int64, error) {
	info, err := fr.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func newTestReader(t *testing.T, content []byte) *fileReader {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.bin")
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

func TestReadHeaderMasterElement(t *testing.T) {
	// Tags(id 1254C367) size 4, content: TargetTypeValue(uint) size 1 value 50.
	content := []byte{0x68, 0xCA, 0x81, 50}
	buf, err := WriteMasterHeader(nil, IDTags, len(content))
	if err != nil {
		t.Fatalf("WriteMasterHeader: %v", err)
	}
	buf = append(buf, content...)

	r := newTestReader(t, buf)
	h, err := ReadHeader(r)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h.ID != IDTags {
		t.Errorf("expected ID 0x%X, got 0x%X", IDTags, h.ID)
	}
	if h.Size != uint64(len(content)) {
		t.Errorf("expected size %d, got %d", len(content), h.Size)
	}
	if h.DataOffset != int64(len(buf)-len(content)) {
		t.Errorf("expected data offset %d, got %d", len(buf)-len(content), h.DataOffset)
	}
	if h.EndOffset != int64(len(buf)) {
		t.Errorf("expected end offset %d, got %d", len(buf), h.EndOffset)
	}
	if h.SizeUnknown {
		t.Errorf("did not expect unknown size")
	}
}

func TestPeekHeaderRestoresPosition(t *testing.T) {
	buf, _ := EncodeUintElement(nil, IDTargetTypeValue, 50)
	r := newTestReader(t, buf)

	before, _ := r.Tell()
	h, err := PeekHeader(r)
	if err != nil {
		t.Fatalf("PeekHeader: %v", err)
	}
	after, _ := r.Tell()
	if before != after {
		t.Errorf("PeekHeader must not move the cursor: before=%d after=%d", before, after)
	}
	if h.ID != IDTargetTypeValue {
		t.Errorf("expected ID 0x%X, got 0x%X", IDTargetTypeValue, h.ID)
	}
}

func TestSkipElementAdvancesToEnd(t *testing.T) {
	first, _ := EncodeUintElement(nil, IDTargetTypeValue, 50)
	second, _ := EncodeStringElement(nil, IDTargetType, "MOVIE")
	buf := append(append([]byte{}, first...), second...)

	r := newTestReader(t, buf)
	h1, err := ReadHeader(r)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if err := SkipElement(r, h1); err != nil {
		t.Fatalf("SkipElement: %v", err)
	}
	h2, err := ReadHeader(r)
	if err != nil {
		t.Fatalf("ReadHeader second: %v", err)
	}
	if h2.ID != IDTargetType {
		t.Errorf("expected to land on TargetType, got 0x%X", h2.ID)
	}
}

func TestAtElementEnd(t *testing.T) {
	content, _ := EncodeUintElement(nil, IDTargetTypeValue, 50)
	parentContent := content
	parentBuf, _ := WriteMasterHeader(nil, IDTargets, len(parentContent))
	parentBuf = append(parentBuf, parentContent...)

	r := newTestReader(t, parentBuf)
	parent, err := ReadHeader(r)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	child, err := ReadHeader(r)
	if err != nil {
		t.Fatalf("ReadHeader child: %v", err)
	}
	if err := SkipElement(r, child); err != nil {
		t.Fatalf("SkipElement: %v", err)
	}
	atEnd, err := AtElementEnd(r, parent)
	if err != nil {
		t.Fatalf("AtElementEnd: %v", err)
	}
	if !atEnd {
		t.Errorf("expected to be at parent end after consuming its only child")
	}
}
