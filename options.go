package redimap

type options struct {
	logger  *Logger
	metrics MetricsCollector
}

func defaultOptions() options {
	return options{
		logger:  NoopLogger(),
		metrics: NoopMetricsCollector{},
	}
}

// Option configures a Map at construction time.
type Option func(*options)

// WithLogger sets the logger used for operation logging.
//
// If nil is passed, logging stays disabled.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithMetricsCollector sets the collector notified after every operation.
//
// If nil is passed, metrics stay disabled.
func WithMetricsCollector(collector MetricsCollector) Option {
	return func(o *options) {
		if collector == nil {
			collector = NoopMetricsCollector{}
		}
		o.metrics = collector
	}
}
