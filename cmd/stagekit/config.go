package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/stagekit/config"
	"github.com/kbukum/stagekit/observability"
	"github.com/kbukum/stagekit/pipeline"
	"github.com/kbukum/stagekit/resilience"
	"github.com/kbukum/stagekit/server"
	"github.com/kbukum/stagekit/validation"
	"github.com/kbukum/stagekit/version"
)

// AppConfig is the stagekit binary's configuration.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Pipeline  PipelineConfig       `yaml:"pipeline" mapstructure:"pipeline"`
	Telemetry observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
	Server    server.Config        `yaml:"server" mapstructure:"server"`
}

// PipelineConfig tunes the order pipeline and its callers.
type PipelineConfig struct {
	// Timeout bounds each run. Zero uses the 2s default; a negative value
	// disables it.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// StageDelay is the simulated latency of each order service.
	StageDelay time.Duration `yaml:"stage_delay" mapstructure:"stage_delay" validate:"gte=0"`
	// Retention keeps settled runs queryable over HTTP.
	Retention time.Duration `yaml:"retention" mapstructure:"retention" validate:"gte=0"`
	// Retry re-runs the whole pipeline when a run times out.
	Retry resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// noTimeout disables the run timeout.
const noTimeout time.Duration = -1

// ApplyDefaults fills unset fields.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version.Get().Short()
	}
	c.ServiceConfig.ApplyDefaults()

	if c.Pipeline.Timeout == 0 {
		c.Pipeline.Timeout = 2 * time.Second
	}
	if c.Pipeline.Retention == 0 {
		c.Pipeline.Retention = pipeline.DefaultRetention
	}
	if c.Pipeline.Retry.MaxAttempts == 0 {
		c.Pipeline.Retry.MaxAttempts = 1
	}

	c.Telemetry.ApplyDefaults()
	c.Server.ApplyDefaults()
}

// Validate checks the base config and every validate tag.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	return validation.Validate(c)
}

// loadConfig reads configuration using the --config and --env-file flags.
func loadConfig(cmd *cobra.Command) (*AppConfig, error) {
	var opts []config.LoaderOption
	if path, _ := cmd.Flags().GetString(configFlag); path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	if path, _ := cmd.Flags().GetString(envFileFlag); path != "" {
		opts = append(opts, config.WithEnvFile(path))
	}

	var cfg AppConfig
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}
