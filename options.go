package docval

import (
	"log/slog"

	"github.com/hupe1980/docval/codec"
	"github.com/hupe1980/docval/resource"
)

type options struct {
	codec            codec.Codec
	metricsCollector MetricsCollector
	logger           *Logger
	rc               *resource.Controller
	cacheBytes       int64
}

// Option configures a Store.
type Option func(*options)

// WithCodec configures the codec used to encode and decode documents.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCodecName selects a codec by its codec.ByName name. Unknown names
// fall back to codec.Default.
func WithCodecName(name string) Option {
	c, ok := codec.ByName(name)
	if !ok {
		c = codec.Default
	}
	return WithCodec(c)
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &docval.BasicMetricsCollector{}
//	docs := docval.New(store, docval.WithMetricsCollector(metrics))
//	// ... use docs ...
//	stats := metrics.GetStats()
//	fmt.Printf("Loads: %d, Avg latency: %dns\n", stats.LoadCount, stats.LoadAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := docval.NewJSONLogger(slog.LevelInfo)
//	docs := docval.New(store, docval.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceController shares rc between stores. It bounds batch
// concurrency, backend bandwidth and cache memory.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithResourceConfig creates a dedicated controller from cfg.
func WithResourceConfig(cfg resource.Config) Option {
	return func(o *options) {
		o.rc = resource.NewController(cfg)
	}
}

// WithCache keeps up to bytes of recently read documents in memory.
// Writes through the Store invalidate their entries.
func WithCache(bytes int64) Option {
	return func(o *options) {
		o.cacheBytes = bytes
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            codec.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.rc == nil {
		o.rc = resource.NewController(resource.Config{})
	}
	return o
}
