package ebml

import "testing"

func TestVintLength(t *testing.T) {
	values := []struct {
		B byte
		N int
	}{
		{0x00, 0},
		{0x80, 1},
		{0xFF, 1},
		{0x40, 2},
		{0x7F, 2},
		{0x20, 3},
		{0x10, 4},
		{0x08, 5},
		{0x04, 6},
		{0x02, 7},
		{0x01, 8},
	}
	for _, ex := range values {
		n := VintLength(ex.B)
		if n != ex.N {
			t.Errorf("VintLength(0x%02x): expected %d, got %d", ex.B, ex.N, n)
		}
	}
}

func TestVintEncodeDecodeRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 126, 127, 128, 16383, 16384, 1 << 20, (1 << 56) - 3}
	for _, v := range values {
		buf, err := VintEncode(nil, v)
		if err != nil {
			t.Fatalf("VintEncode(%d): %v", v, err)
		}
		n := VintSize(v)
		if len(buf) != n {
			t.Errorf("VintEncode(%d): expected length %d, got %d", v, n, len(buf))
		}
		got, err := VintDecode(buf)
		if err != nil {
			t.Fatalf("VintDecode after encoding %d: %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d: got %d", v, got)
		}
	}
}

func TestVintEncodeFixedWidensAndRoundTrips(t *testing.T) {
	v := uint64(100)
	for n := VintSize(v); n <= 8; n++ {
		buf, err := VintEncodeFixed(nil, v, n)
		if err != nil {
			t.Fatalf("VintEncodeFixed(%d, %d): %v", v, n, err)
		}
		if len(buf) != n {
			t.Errorf("expected length %d, got %d", n, len(buf))
		}
		got, err := VintDecode(buf)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got != v {
			t.Errorf("fixed-width round trip at n=%d: got %d, want %d", n, got, v)
		}
	}
}

func TestVintEncodeFixedOverflow(t *testing.T) {
	if _, err := VintEncodeFixed(nil, 1000, 1); err == nil {
		t.Errorf("expected overflow error encoding 1000 into 1 byte")
	}
}

func TestIDEncodeDecodeRetainsMarker(t *testing.T) {
	buf, err := IDEncode(nil, IDEBML)
	if err != nil {
		t.Fatalf("IDEncode: %v", err)
	}
	id, err := IDDecode(buf)
	if err != nil {
		t.Fatalf("IDDecode: %v", err)
	}
	if id != IDEBML {
		t.Errorf("expected 0x%X, got 0x%X", IDEBML, id)
	}
}

func TestVintIsUnknown(t *testing.T) {
	buf, _ := VintEncodeFixed(nil, 0, 1)
	_ = buf
	if !VintIsUnknown(vintUnknown[1], 1) {
		t.Errorf("expected all-ones length-1 vint to be unknown")
	}
	if VintIsUnknown(0, 1) {
		t.Errorf("0 must not be classified as unknown")
	}
}
