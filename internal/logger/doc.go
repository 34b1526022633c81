// Package logger builds the zap logger used by the msgform command.
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json or console
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "console"})
//	w := msgwidget.New(value, msgwidget.WithLogger(log))
package logger
