package ports

// Logger is the observability port injected into engines and services,
// keeping business logic free of process-wide logging state.
type Logger interface {
	Error(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Info(format string, args ...interface{})
	Debug(format string, args ...interface{})
}
