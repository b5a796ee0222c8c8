// Package logger provides structured logging for stagekit using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers. Run and request identifiers stored on the
// context with ContextWithRunID / ContextWithRequestID are attached by
// WithContext.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("pipeline")
//	log.Info("run finished", logger.Fields("run_id", id, "outcome", "completed"))
package logger
