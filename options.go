package reactor

// reactorOptions holds configuration resolved from ReactorOption values at
// construction time.
type reactorOptions struct {
	logger  Logger
	metrics *Metrics
}

// ReactorOption configures a Reactor at construction time.
type ReactorOption interface {
	applyReactor(*reactorOptions)
}

type reactorOptionFunc func(*reactorOptions)

func (f reactorOptionFunc) applyReactor(opts *reactorOptions) { f(opts) }

// WithLogger sets the Logger used by this Reactor and the sources it
// creates. If omitted, the reactor falls back to the process-wide default
// logger set via SetLogger (or a no-op logger if that was never called).
func WithLogger(logger Logger) ReactorOption {
	return reactorOptionFunc(func(opts *reactorOptions) {
		opts.logger = logger
	})
}

// WithMetrics enables runtime metrics collection on the Reactor, accessible
// via Reactor.Metrics after construction.
func WithMetrics(enabled bool) ReactorOption {
	return reactorOptionFunc(func(opts *reactorOptions) {
		if enabled {
			opts.metrics = newMetrics()
		} else {
			opts.metrics = nil
		}
	})
}

func resolveReactorOptions(opts []ReactorOption) *reactorOptions {
	cfg := &reactorOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyReactor(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = getGlobalLogger()
	}
	return cfg
}
