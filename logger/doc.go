// Package logger provides structured logging for wirekit applications
// using zerolog.
//
// It supports JSON and console output, level configuration through
// Config or LOG_* environment variables, and component-scoped loggers
// with structured fields. Resolution middlewares in the observability
// package log through this package so container activity shares the
// application's log stream.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.Get("bootstrap")
//	log.Info("modules registered", logger.Fields("count", 4))
package logger
