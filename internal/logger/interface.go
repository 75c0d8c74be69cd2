package logger

// Logger defines the minimal logging surface packages depend on
type Logger interface {
	Debug() *LogEvent
	Info() *LogEvent
	Warn() *LogEvent
	Error() *LogEvent
}
