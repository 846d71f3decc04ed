// Package logging configures the process-wide logrus logger.
package logging

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Setup applies level and format to the standard logrus logger.
// An empty format selects JSON outside development and text in development.
func Setup(level, format string, dev bool) {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		logrus.Warnf("Invalid LOG_LEVEL value: %s, using info", level)
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)

	if format == "" {
		format = "json"
		if dev {
			format = "text"
		}
	}

	switch strings.ToLower(format) {
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
