package hooking

import (
	"log/slog"

	"github.com/strongdm/apmcore/pkg/logging"
	"github.com/strongdm/apmcore/pkg/wildcard"
)

type options struct {
	logger   *slog.Logger
	disabled wildcard.List
}

// Option configures the components of this package.
type Option func(*options)

// WithLogger sets the logger. Components log nothing by default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDisabledInstrumentations makes Storage refuse hooks from
// instrumentations matching list.
func WithDisabledInstrumentations(list wildcard.List) Option {
	return func(o *options) {
		o.disabled = list
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logging.ForFeature(o.logger, logging.FeatureHooks)
	return o
}
