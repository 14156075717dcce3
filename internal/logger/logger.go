package logger

import (
	"os"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"

	"github.com/prevozi/carpool-backend/internal/config"
)

// New builds the application logger. Output is JSON; when a log file is
// configured it is rotated with lumberjack, otherwise logs go to stdout.
func New(cfg config.LogConfig, level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if cfg.File != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		})
	} else {
		log.SetOutput(os.Stdout)
	}

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	log.SetLevel(logLevel)

	return log
}
