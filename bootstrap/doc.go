// Package bootstrap orchestrates the lifecycle of stagekit programs.
//
// NewApp validates a typed config and initializes logging. Components are
// started in registration order and stopped in reverse; hooks run around
// those phases. Long-running services call Run, which blocks until
// SIGINT/SIGTERM. One-shot commands call RunTask, whose context is
// cancelled on the same signals so an in-flight pipeline run can settle as
// Cancelled.
package bootstrap
