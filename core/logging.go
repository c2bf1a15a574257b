package core

// Package-level logger singleton, grounded on the teacher's own
// core/idwallet_registration.go (InitIDRegistry taking a *logrus.Logger)
// and core/ai_secure_storage.go's package-level logger field.

import "github.com/sirupsen/logrus"

var globalLogger = logrus.StandardLogger()

// SetLogger replaces the package-wide logger. Passing nil restores the
// standard logrus logger.
func SetLogger(l *logrus.Logger) {
	if l == nil {
		globalLogger = logrus.StandardLogger()
		return
	}
	globalLogger = l
}

func logger() *logrus.Logger {
	return globalLogger
}

// Logger returns the package-wide logger for use by collaborator
// packages (e.g. sync) that want consistent log formatting.
func Logger() *logrus.Logger {
	return globalLogger
}
