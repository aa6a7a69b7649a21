package logger

import (
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	instance *logrus.Logger
	once     sync.Once
)

// Initialize sets up the logger with proper configuration
func Initialize() {
	once.Do(func() {
		instance = logrus.New()

		var level logrus.Level
		switch os.Getenv("LOG_LEVEL") {
		case "DEBUG":
			level = logrus.DebugLevel
		case "INFO":
			level = logrus.InfoLevel
		case "WARN":
			level = logrus.WarnLevel
		case "ERROR":
			level = logrus.ErrorLevel
		default:
			level = logrus.InfoLevel
		}

		instance.SetLevel(level)
		instance.SetOutput(os.Stdout)
		instance.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
			DisableColors:   true,
		})
	})
}

// GetLogger returns the configured logger instance
func GetLogger() *logrus.Logger {
	if instance == nil {
		Initialize()
	}
	return instance
}

// WithContext creates a logger with additional context fields
func WithContext(fields map[string]interface{}) *logrus.Entry {
	return GetLogger().WithFields(fields)
}

// WithReport creates a logger with report context
func WithReport(reportID string) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"report_id": reportID,
		"component": "report_service",
	})
}

// WithUser creates a logger with user context
func WithUser(userID string) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"user_id":   userID,
		"component": "auth_service",
	})
}

// WithBackend creates a logger with backend path context
func WithBackend(path string) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"path":      path,
		"component": "backend",
	})
}

// WithError creates a logger with error context
func WithError(err error, component string) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"error":     err.Error(),
		"component": component,
	})
}

// Log levels convenience functions (with fields)
func Debug(msg string, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	GetLogger().WithFields(fields).Debug(msg)
}

func Info(msg string, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	GetLogger().WithFields(fields).Info(msg)
}

func Warn(msg string, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	GetLogger().WithFields(fields).Warn(msg)
}

func Error(msg string, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	GetLogger().WithFields(fields).Error(msg)
}

func Fatal(msg string, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	GetLogger().WithFields(fields).Fatal(msg)
}
