package log

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

var debug bool

// Logger is a global interface for fovea loggers
type Logger interface {
	Debug(...interface{})
	Info(...interface{})
}

func init() {
	var err error
	debug, err = strconv.ParseBool(os.Getenv("FOVEA_DEBUG"))
	if err != nil {
		debug = false
	}
}

// GetLogger returns a new logger instance
func GetLogger() *logrus.Logger {
	l := logrus.New()
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Stage returns a logger entry annotated with pipeline and stage ids.
func Stage(l *logrus.Logger, pipeID, stage string) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		"pipe":  pipeID,
		"stage": stage,
	})
}

// silent discards all records.
type silent struct{}

func (silent) Debug(...interface{}) {}
func (silent) Info(...interface{})  {}

// Silent returns a logger which discards all records. It is the
// default for pipelines built without WithLogger.
func Silent() Logger {
	return silent{}
}
