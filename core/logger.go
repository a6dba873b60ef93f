package core

// Logger reports application events to an external tracker and mirrors
// them to the standard logger. Implementations may inspect args for a
// user value to attach the acting user to the report.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
