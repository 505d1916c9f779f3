package config

// Logger receives debug traces of where each setting came from.
// *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
}

type discardLogger struct{}

func (discardLogger) Debug(string, ...interface{}) {}
