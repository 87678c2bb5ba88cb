// Package logging configures the process-wide structured logger.
package logging

import "github.com/phuslu/log"

// Setup configures the default logger with the given level and a console
// writer. Interactive commands pass a quieter level so terminal UIs stay
// clean.
func Setup(level string) {
	log.DefaultLogger = log.Logger{
		Level:      log.ParseLevel(level),
		Caller:     0,
		TimeFormat: "15:04:05",
		Writer: &log.ConsoleWriter{
			ColorOutput:    true,
			EndWithMessage: true,
		},
	}
}
