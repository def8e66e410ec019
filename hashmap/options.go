package hashmap

import "github.com/datatrails/go-datatrails-common/logger"

// Options configures a dictionary. The same options travel with every
// dictionary derived from it (splits, subtrees, filtered copies).
type Options struct {
	Meter Meter
	Log   logger.Logger
}

// Option is a functional option for New and the readers.
type Option func(*Options)

// WithMeter routes every cell built by mutations through m.
func WithMeter(m Meter) Option {
	return func(o *Options) {
		o.Meter = m
	}
}

// WithLogger enables diagnostic logging. Structural problems met while
// reading nodes are logged with Infof.
func WithLogger(log logger.Logger) Option {
	return func(o *Options) {
		o.Log = log
	}
}
