package mkvtag

// OpenOptions holds the functional options applied to a Context on Open/OpenRW.
type OpenOptions struct {
	logger Logger
	pool   BufferPool
}

// Option configures a Context at open time.
type Option func(*OpenOptions)

// WithLogger attaches a diagnostic logger. Passing nil disables logging.
func WithLogger(l Logger) Option {
	return func(o *OpenOptions) {
		if l == nil {
			l = defaultLogger()
		}
		o.logger = l
	}
}

// WithBufferPool overrides the sync.Pool-backed default buffer pool.
func WithBufferPool(p BufferPool) Option {
	return func(o *OpenOptions) {
		if p == nil {
			p = newDefaultBufferPool()
		}
		o.pool = p
	}
}

func newOpenOptions(opts ...Option) *OpenOptions {
	o := &OpenOptions{
		logger: defaultLogger(),
		pool:   newDefaultBufferPool(),
	}
	for _, apply := range opts {
		apply(o)
	}
	return o
}
