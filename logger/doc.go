// Package logger provides structured logging for audioscribe using zerolog.
//
// It supports JSON and console output, log level configuration, and
// component-scoped loggers with structured fields. Loggers are passed
// explicitly into the components that use them; the global logger only
// catches backends constructed without one.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.New(&cfg, "audioscribe").WithComponent("batch")
//	log.Info("transcription saved", logger.Fields(logger.FieldOutput, path))
package logger
