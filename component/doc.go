// Package component defines the lifecycle contract for long-lived pieces of
// a stagekit process (telemetry exporters, the HTTP server) and a registry
// that starts them in order and stops them in reverse.
package component
