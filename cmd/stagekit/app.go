package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/stagekit/bootstrap"
	"github.com/kbukum/stagekit/logger"
	"github.com/kbukum/stagekit/observability"
	"github.com/kbukum/stagekit/pipeline"
)

// newApp loads config, applies flag overrides and registers telemetry.
func newApp(cmd *cobra.Command, override func(*AppConfig)) (*bootstrap.App[*AppConfig], *observability.Telemetry, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if override != nil {
		override(cfg)
	}

	// Defaults must be in place before telemetry copies its config.
	cfg.ApplyDefaults()
	tel := observability.NewTelemetry(cfg.Telemetry, cfg.Name, cfg.Version, cfg.Environment)

	app, err := bootstrap.NewApp(cfg, bootstrap.WithComponents(tel))
	if err != nil {
		return nil, nil, err
	}
	return app, tel, nil
}

// pipelineOptions wires run and stage logging, tracing and metrics. It must
// be called after telemetry has started.
func pipelineOptions(log *logger.Logger, tel *observability.Telemetry, name string) []pipeline.Option {
	m := tel.Metrics()
	runLog := log.WithComponent("pipeline")
	return []pipeline.Option{
		pipeline.WithRunLogger(runLog),
		pipeline.WithRunMetrics(m),
		pipeline.WithStageMiddleware(
			pipeline.WithTracing(name),
			pipeline.WithMetrics(m),
			pipeline.WithLogging(runLog),
		),
	}
}
