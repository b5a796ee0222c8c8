package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/stagekit/component"
)

// Config configures OTLP export. When Enabled is false, spans and metrics
// go to whatever providers are installed globally (no-op by default).
type Config struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true,omitempty,hostname_port"`
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.Interval == 0 {
		c.Interval = 15 * time.Second
	}
}

var _ component.Component = (*Telemetry)(nil)

// Telemetry owns the tracer and meter providers for a process.
type Telemetry struct {
	cfg         Config
	service     string
	version     string
	environment string

	tp      *sdktrace.TracerProvider
	mp      *sdkmetric.MeterProvider
	metrics *Metrics
}

// NewTelemetry creates a telemetry component. Nothing is exported until Start.
func NewTelemetry(cfg Config, service, version, environment string) *Telemetry {
	return &Telemetry{cfg: cfg, service: service, version: version, environment: environment}
}

// Name implements component.Component.
func (t *Telemetry) Name() string { return "telemetry" }

// Start installs OTLP exporters when enabled and builds the run metrics.
func (t *Telemetry) Start(ctx context.Context) error {
	if t.cfg.Enabled {
		tp, err := InitTracer(ctx, TracerConfig{
			ServiceName:    t.service,
			ServiceVersion: t.version,
			Environment:    t.environment,
			Endpoint:       t.cfg.Endpoint,
			Insecure:       t.cfg.Insecure,
			SampleRate:     t.cfg.SampleRate,
		})
		if err != nil {
			return err
		}
		t.tp = tp

		mp, err := InitMeter(ctx, MeterConfig{
			ServiceName:    t.service,
			ServiceVersion: t.version,
			Environment:    t.environment,
			Endpoint:       t.cfg.Endpoint,
			Insecure:       t.cfg.Insecure,
			Interval:       t.cfg.Interval,
		})
		if err != nil {
			return errors.Join(err, tp.Shutdown(ctx))
		}
		t.mp = mp
	}

	m, err := NewMetrics(Meter(t.service))
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	t.metrics = m
	return nil
}

// Stop flushes and shuts down the exporters.
func (t *Telemetry) Stop(ctx context.Context) error {
	var errs []error
	if t.mp != nil {
		errs = append(errs, t.mp.Shutdown(ctx))
	}
	if t.tp != nil {
		errs = append(errs, t.tp.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// Health implements component.Component.
func (t *Telemetry) Health(_ context.Context) component.Health {
	switch {
	case t.metrics == nil:
		return component.Unhealthy(t.Name(), "not started")
	case !t.cfg.Enabled:
		return component.Healthy(t.Name(), "export disabled")
	}
	return component.Healthy(t.Name(), "")
}

// Metrics returns the run metrics. It is nil before Start.
func (t *Telemetry) Metrics() *Metrics { return t.metrics }
