package bootstrap

import (
	"time"

	"github.com/kbukum/stagekit/component"
	"github.com/kbukum/stagekit/logger"
)

// Summary records what happened during startup.
type Summary struct {
	ServiceName     string
	Version         string
	StartupDuration time.Duration
	Components      []component.Health
}

// Healthy counts the healthy components.
func (s *Summary) Healthy() int {
	n := 0
	for _, h := range s.Components {
		if h.Status == component.StatusHealthy {
			n++
		}
	}
	return n
}

// Log writes the summary, one line per component.
func (s *Summary) Log(log *logger.Logger) {
	log.Info("startup complete", logger.Fields(
		"name", s.ServiceName,
		"version", s.Version,
		"startup_ms", s.StartupDuration.Milliseconds(),
		"components", len(s.Components),
		"healthy", s.Healthy(),
	))
	for _, h := range s.Components {
		fields := logger.Fields(logger.FieldComponent, h.Name, "status", string(h.Status))
		if h.Message != "" {
			fields["message"] = h.Message
		}
		log.Debug("component", fields)
	}
}
