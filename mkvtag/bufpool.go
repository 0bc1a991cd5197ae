package mkvtag

import "sync"

// BufferPool supplies and reclaims the transient byte buffers the
// placement planner and tag codec build while serializing a Tags
// element. It is the Go rendering of the allocator injection point
// mkvtag_context_t carries in the original C API.
type BufferPool interface {
	Get(size int) []byte
	Put(buf []byte)
}

type syncPoolBufferPool struct {
	pool sync.Pool
}

func newDefaultBufferPool() BufferPool {
	return &syncPoolBufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				return make([]byte, 0, 4096)
			},
		},
	}
}

func (p *syncPoolBufferPool) Get(size int) []byte {
	buf := p.pool.Get().([]byte)
	if cap(buf) < size {
		return make([]byte, 0, size)
	}
	return buf[:0]
}

func (p *syncPoolBufferPool) Put(buf []byte) {
	p.pool.Put(buf[:0])
}
