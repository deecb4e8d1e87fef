package logging

import "sync"

type LoggerManager struct {
	serviceLogger *ZapLogger
	once          sync.Once
}

var loggerManager = &LoggerManager{}

func InitServiceLogger(config LoggerConfig) error {
	var err error
	loggerManager.once.Do(func() {
		loggerManager.serviceLogger, err = NewZapLogger(config)
	})
	return err
}

func GetServiceLogger() Logger {
	if loggerManager.serviceLogger == nil {
		panic("logger not initialized")
	}
	return loggerManager.serviceLogger
}

// Shutdown flushes the service logger and closes its file sink
func Shutdown() error {
	if loggerManager.serviceLogger == nil {
		return nil
	}
	return loggerManager.serviceLogger.Sync()
}
