package monitoring

import "log"

// Logf is the package-level diagnostic logger, shared by the framing and
// pipeline stages. It defaults to log.Printf; tests mute it and embedded
// deployments can redirect it.
var Logf func(format string, v ...any) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op.
func SetLogger(f func(format string, v ...any)) {
	if f == nil {
		Logf = func(string, ...any) {}
		return
	}
	Logf = f
}
