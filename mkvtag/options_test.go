package mkvtag

import "testing"

type countingPool struct {
	gets int
}

func (p *countingPool) Get(size int) []byte { p.gets++; return make([]byte, 0, size) }
func (p *countingPool) Put([]byte)          {}

func TestWithBufferPoolOverridesDefault(t *testing.T) {
	pool := &countingPool{}
	opts := newOpenOptions(WithBufferPool(pool))
	if opts.pool != pool {
		t.Errorf("expected custom pool to be installed")
	}
}

func TestWithLoggerNilFallsBackToDefault(t *testing.T) {
	opts := newOpenOptions(WithLogger(nil))
	if opts.logger == nil {
		t.Errorf("expected a non-nil default logger")
	}
}

func TestDefaultOptionsAreUsable(t *testing.T) {
	opts := newOpenOptions()
	if opts.logger == nil || opts.pool == nil {
		t.Errorf("expected non-nil defaults, got %+v", opts)
	}
	buf := opts.pool.Get(16)
	if cap(buf) < 16 {
		t.Errorf("expected pool buffer with capacity >= 16, got %d", cap(buf))
	}
	opts.pool.Put(buf)
}
