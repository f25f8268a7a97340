package wvcb

import "go.uber.org/zap"

type options struct {
	logger  *zap.Logger
	onError func(error)
}

type Option func(*options)

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithErrorHandler installs the loop's uncaught-error handler. Errors returned
// or panics raised by registered functions end up here.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) { o.onError = fn }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = Logger()
	}
	return o
}
