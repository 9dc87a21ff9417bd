package main

import (
	lanbeacon "github.com/lanbeacon/go-lanbeacon"
	"github.com/sirupsen/logrus"
)

// LogrusAdapter bridges logrus to the lanbeacon.Logger interface.
type LogrusAdapter struct {
	Log *logrus.Entry
}

func (l LogrusAdapter) Debugf(format string, args ...interface{}) {
	l.Log.Debugf(format, args...)
}

func (l LogrusAdapter) Infof(format string, args ...interface{}) {
	l.Log.Infof(format, args...)
}

func (l LogrusAdapter) Warnf(format string, args ...interface{}) {
	l.Log.Warnf(format, args...)
}

func (l LogrusAdapter) Errorf(format string, args ...interface{}) {
	l.Log.Errorf(format, args...)
}

func (l LogrusAdapter) WithField(key string, value interface{}) lanbeacon.Logger {
	return LogrusAdapter{l.Log.WithField(key, value)}
}

func (l LogrusAdapter) WithError(err error) lanbeacon.Logger {
	return LogrusAdapter{l.Log.WithError(err)}
}
