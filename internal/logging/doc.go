// Package logging builds the process-wide slog logger with console and JSON
// handlers and provides attribute helpers shared across components.
package logging
