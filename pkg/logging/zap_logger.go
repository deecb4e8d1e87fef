package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ZapLogger struct {
	logger  *zap.Logger
	rotator *SequentialRotator
}

var _ Logger = (*ZapLogger)(nil)

// NewZapLogger builds a zap logger that writes JSON lines to a rotated file under
// <LogDir>/logs/<process>/ and, in development or with Console set, human readable
// lines to stdout.
func NewZapLogger(config LoggerConfig) (*ZapLogger, error) {
	if config.ProcessName == "" {
		return nil, fmt.Errorf("process name is required")
	}
	if config.LogDir == "" {
		config.LogDir = BaseDataDir
	}

	logDir := filepath.Join(config.LogDir, LogsDir, string(config.ProcessName))
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	rotator := NewSequentialRotator(
		filepath.Join(logDir, LogFileName),
		orDefault(config.MaxSizeMB, DefaultMaxSizeMB),
		orDefault(config.MaxAgeDays, DefaultMaxAgeDays),
		orDefault(config.MaxBackups, DefaultMaxBackups),
		false,
	)

	level := zapcore.InfoLevel
	if config.Environment == Development {
		level = zapcore.DebugLevel
	}

	fileEncoderConfig := zap.NewProductionEncoderConfig()
	fileEncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(TimeFormat)

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig), zapcore.AddSync(rotator), level),
	}

	if config.Environment == Development || config.Console {
		consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
		consoleEncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(TimeFormat)
		if config.UseColors {
			consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			consoleEncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleEncoderConfig),
			zapcore.Lock(os.Stdout),
			level,
		))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))

	return &ZapLogger{
		logger:  logger,
		rotator: rotator,
	}, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func (z *ZapLogger) Debug(msg string, tags ...any) {
	z.logger.Sugar().Debugw(msg, tags...)
}

func (z *ZapLogger) Info(msg string, tags ...any) {
	z.logger.Sugar().Infow(msg, tags...)
}

func (z *ZapLogger) Warn(msg string, tags ...any) {
	z.logger.Sugar().Warnw(msg, tags...)
}

func (z *ZapLogger) Error(msg string, tags ...any) {
	z.logger.Sugar().Errorw(msg, tags...)
}

func (z *ZapLogger) Fatal(msg string, tags ...any) {
	z.logger.Sugar().Fatalw(msg, tags...)
}

func (z *ZapLogger) Debugf(template string, args ...interface{}) {
	z.logger.Sugar().Debugf(template, args...)
}

func (z *ZapLogger) Infof(template string, args ...interface{}) {
	z.logger.Sugar().Infof(template, args...)
}

func (z *ZapLogger) Warnf(template string, args ...interface{}) {
	z.logger.Sugar().Warnf(template, args...)
}

func (z *ZapLogger) Errorf(template string, args ...interface{}) {
	z.logger.Sugar().Errorf(template, args...)
}

func (z *ZapLogger) Fatalf(template string, args ...interface{}) {
	z.logger.Sugar().Fatalf(template, args...)
}

func (z *ZapLogger) With(tags ...any) Logger {
	return &ZapLogger{
		logger:  z.logger.Sugar().With(tags...).Desugar(),
		rotator: z.rotator,
	}
}

// Sync flushes buffered entries and closes the file sink.
func (z *ZapLogger) Sync() error {
	// stdout sync errors are expected on some platforms
	_ = z.logger.Sync()
	if z.rotator != nil {
		return z.rotator.Close()
	}
	return nil
}
