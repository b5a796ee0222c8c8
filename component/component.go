package component

import "context"

// HealthStatus is a component's health verdict.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Health is one component's report.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Healthy reports name as healthy with an optional note.
func Healthy(name, message string) Health {
	return Health{Name: name, Status: StatusHealthy, Message: message}
}

// Unhealthy reports name as unhealthy with the reason.
func Unhealthy(name, reason string) Health {
	return Health{Name: name, Status: StatusUnhealthy, Message: reason}
}

// Worst folds reports into one status: any unhealthy report wins, then any
// degraded one. No reports is healthy.
func Worst(reports []Health) HealthStatus {
	status := StatusHealthy
	for _, h := range reports {
		switch h.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}

// Component is something the application starts before serving and stops
// on shutdown: the HTTP server, telemetry exporters, the orders API.
type Component interface {
	Name() string
	// Start returns once the component is usable.
	Start(ctx context.Context) error
	// Stop releases resources. ctx bounds graceful shutdown.
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}
