package bootstrap

import (
	"time"

	"github.com/kbukum/stagekit/component"
	"github.com/kbukum/stagekit/logger"
)

const defaultGracefulTimeout = 15 * time.Second

// Option configures an App. Options are not generic, so one set works for
// every config type.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout time.Duration
	components      []component.Component
}

func resolveOptions(opts []Option) appOptions {
	o := appOptions{gracefulTimeout: defaultGracefulTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger replaces the logger built from the config's logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithGracefulTimeout bounds OnStop hooks plus component shutdown.
// Non-positive values keep the default.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		if d > 0 {
			o.gracefulTimeout = d
		}
	}
}

// WithComponents registers components at creation, in start order.
func WithComponents(cs ...component.Component) Option {
	return func(o *appOptions) { o.components = append(o.components, cs...) }
}
