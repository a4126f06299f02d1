package logger

// NopLogger discards everything. Used by tests and by callers that want the
// engine silent without configuring an output.
type NopLogger struct{}

// NewNopLogger creates a logger that discards all records.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

func (NopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (NopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (NopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (NopLogger) Error(msg string, keysAndValues ...interface{}) {}
func (NopLogger) Close() error                                   { return nil }
