package logutils

import "github.com/sirupsen/logrus"

var log = logrus.StandardLogger()

func SetLoggerLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
}

// Setup configures the standard logger for service use: full timestamps
// plus the requested level.
func Setup(level string) {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	SetLoggerLevel(level)
}
