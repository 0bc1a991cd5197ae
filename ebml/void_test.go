package ebml

import "testing"

func TestAppendVoidExactTotalSize(t *testing.T) {
	for _, total := range []int{2, 3, 8, 130, 4096, 70000} {
		buf, err := AppendVoid(nil, total)
		if err != nil {
			t.Fatalf("AppendVoid(%d): %v", total, err)
		}
		if len(buf) != total {
			t.Errorf("AppendVoid(%d): produced %d bytes", total, len(buf))
		}
		if buf[0] != byte(IDVoid) {
			t.Errorf("AppendVoid(%d): expected Void ID byte, got 0x%02X", total, buf[0])
		}
	}
}

func TestAppendVoidTooSmall(t *testing.T) {
	if _, err := AppendVoid(nil, 1); err != ErrVoidTooSmall {
		t.Errorf("expected ErrVoidTooSmall, got %v", err)
	}
	if _, err := AppendVoid(nil, 0); err != ErrVoidTooSmall {
		t.Errorf("expected ErrVoidTooSmall, got %v", err)
	}
}

func TestAppendVoidIsReadableAsElement(t *testing.T) {
	total := 300
	buf, err := AppendVoid(nil, total)
	if err != nil {
		t.Fatalf("AppendVoid: %v", err)
	}
	r := newTestReader(t, buf)
	h, err := ReadHeader(r)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h.ID != IDVoid {
		t.Errorf("expected Void ID, got 0x%X", h.ID)
	}
	if h.EndOffset != int64(total) {
		t.Errorf("expected end offset %d, got %d", total, h.EndOffset)
	}
}
