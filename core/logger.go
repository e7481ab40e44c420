package core

// Logger is the app-wide logging contract. Implementations are expected to
// handle extra args of any type; a user.User arg attaches the acting user to
// the reported event.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
