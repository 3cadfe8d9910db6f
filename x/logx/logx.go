// Package logx builds the logrus loggers used across drivers and tools.
package logx

import (
	"flag"
	"io"

	prefixed "github.com/BertoldVdb/logrus-prefixed-formatter"
	"github.com/sirupsen/logrus"
)

var loglevel *int

// InitParam registers the -loglevel flag. Call before flag.Parse.
func InitParam() {
	loglevel = flag.Int("loglevel", int(logrus.InfoLevel), "The loglevel to use. Valid values are from 0 to 6. Higher values output more information")
}

// New returns a root entry with the prefixed text formatter. The -loglevel
// flag, when registered, overrides level.
func New(level logrus.Level) *logrus.Entry {
	logrus.ErrorKey = "$error"
	logger := logrus.New()
	if loglevel == nil {
		logger.SetLevel(level)
	} else {
		logger.SetLevel(logrus.Level(*loglevel))
	}
	f := new(prefixed.TextFormatter)
	f.TimestampFormat = "2006-01-02 15:04:05"
	f.FullTimestamp = true
	f.SpacePadding = 50
	logger.SetFormatter(f)
	return logrus.NewEntry(logger)
}

// Discard returns an entry that drops everything; used as the default for
// components constructed without a logger.
func Discard() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(logger)
}

// Prefix attaches the formatter's prefix field.
func Prefix(e *logrus.Entry, p string) *logrus.Entry {
	return e.WithField("prefix", p)
}
