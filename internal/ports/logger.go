package ports

// Logger defines the interface for structured, key-value logging.
type Logger interface {
	// Debug logs a debug message.
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message.
	Info(msg string, keysAndValues ...interface{})

	// Warn logs a warning message.
	Warn(msg string, keysAndValues ...interface{})

	// Error logs an error message.
	Error(msg string, keysAndValues ...interface{})

	// Close flushes and closes the logger.
	Close() error
}
