package logger

import (
	"log/slog"
)

// ErrorField renders err under the "error" key; a nil error logs as "<nil>".
func ErrorField(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

// Component tags a record with the subsystem that wrote it.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
