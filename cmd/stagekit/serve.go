package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/stagekit/bootstrap"
	"github.com/kbukum/stagekit/component"
	"github.com/kbukum/stagekit/observability"
	"github.com/kbukum/stagekit/orders"
	"github.com/kbukum/stagekit/pipeline"
	"github.com/kbukum/stagekit/server"
	"github.com/kbukum/stagekit/server/endpoint"
)

const portFlag = "port"

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the orders API over HTTP",
		Long: `Serve the orders API:

  POST   /orders        run the order pipeline and wait for its outcome
  POST   /orders/async  start a run and return its ID
  GET    /runs/:id      report a run's state
  DELETE /runs/:id      cancel a run
  GET    /health        component health`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	flags := cmd.Flags()
	flags.Int(portFlag, 0, "listen port (overrides server.port)")
	flags.Duration(timeoutFlag, 0, "default run timeout, 0 disables it (overrides pipeline.timeout)")
	flags.Duration(stageDelayFlag, 0, "simulated latency of each service (overrides pipeline.stage_delay)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	overridePipeline := pipelineOverrides(cmd)
	app, tel, err := newApp(cmd, func(cfg *AppConfig) {
		overridePipeline(cfg)
		if cmd.Flags().Changed(portFlag) {
			cfg.Server.Port, _ = cmd.Flags().GetInt(portFlag)
		}
	})
	if err != nil {
		return err
	}

	srv := server.New(app.Cfg.Server, app.Logger)
	if err := srv.ApplyMiddleware(); err != nil {
		return err
	}
	srv.RegisterHealth(app.Name, app.Components.HealthAll)

	// Registration order is start order: routes exist before the server
	// listens, and in-flight runs are cancelled after it stops accepting.
	if err := app.RegisterComponent(newOrdersAPI(app, tel, srv)); err != nil {
		return err
	}
	if err := app.RegisterComponent(srv); err != nil {
		return err
	}

	return app.Run(cmd.Context())
}

// ordersAPI builds the order pipeline once telemetry is up and mounts its
// routes. Stopping it cancels every run still tracked.
type ordersAPI struct {
	app     *bootstrap.App[*AppConfig]
	tel     *observability.Telemetry
	srv     *server.Server
	tracker *pipeline.Tracker
}

var _ component.Component = (*ordersAPI)(nil)

func newOrdersAPI(app *bootstrap.App[*AppConfig], tel *observability.Telemetry, srv *server.Server) *ordersAPI {
	return &ordersAPI{app: app, tel: tel, srv: srv}
}

func (o *ordersAPI) Name() string { return "orders_api" }

func (o *ordersAPI) Start(_ context.Context) error {
	cfg := o.app.Cfg.Pipeline
	svc := orders.NewServices(orders.NewFixtureStore(),
		orders.WithLatency(cfg.StageDelay),
		orders.WithLogger(o.app.Logger.WithComponent("orders")),
	)
	p, err := orders.NewPipeline(svc, pipelineOptions(o.app.Logger, o.tel, orders.PipelineName)...)
	if err != nil {
		return err
	}

	o.tracker = pipeline.NewTracker(cfg.Retention)
	endpoint.NewRuns(p, o.tracker, cfg.Timeout).Register(o.srv.GinEngine())
	return nil
}

func (o *ordersAPI) Stop(_ context.Context) error {
	if o.tracker == nil {
		return nil
	}
	if n := o.tracker.CancelAll(); n > 0 {
		o.app.Logger.Info("cancelled in-flight runs", map[string]interface{}{"count": n})
	}
	return nil
}

func (o *ordersAPI) Health(_ context.Context) component.Health {
	if o.tracker == nil {
		return component.Unhealthy(o.Name(), "not started")
	}
	return component.Healthy(o.Name(), fmt.Sprintf("%d runs tracked", o.tracker.Len()))
}
