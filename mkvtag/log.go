package mkvtag

import "go.uber.org/zap"

// Logger is satisfied by *zap.Logger. It is a purely diagnostic side
// channel: nothing in this package consults it before deciding what
// to do, only after.
type Logger interface {
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Debug(msg string, fields ...zap.Field)
}

func defaultLogger() Logger {
	return zap.NewNop()
}
