package logging

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// rfc3339Micros is RFC 3339 UTC with fixed microsecond precision.
const rfc3339Micros = "2006-01-02T15:04:05.000000Z"

// severityNames maps zap levels to Cloud Logging severities. Unknown levels encode as DEFAULT.
var severityNames = map[zapcore.Level]string{
	zapcore.DebugLevel:  "DEBUG",
	zapcore.InfoLevel:   "INFO",
	zapcore.WarnLevel:   "WARNING",
	zapcore.ErrorLevel:  "ERROR",
	zapcore.DPanicLevel: "CRITICAL",
	zapcore.PanicLevel:  "ALERT",
	zapcore.FatalLevel:  "EMERGENCY",
}

var (
	loggerOnce sync.Once
	baseLogger *zap.Logger
	loggerErr  error
)

func encodeSeverity(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	name, ok := severityNames[level]
	if !ok {
		name = "DEFAULT"
	}
	enc.AppendString(name)
}

func encodeTimeMicros(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(rfc3339Micros))
}

// productionConfig writes JSON records to stdout, where the announce line also goes.
func productionConfig() zap.Config {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stdout"}

	enc := &cfg.EncoderConfig
	enc.TimeKey = "timestamp"
	enc.EncodeTime = encodeTimeMicros
	enc.LevelKey = "severity"
	enc.EncodeLevel = encodeSeverity
	enc.MessageKey = "message"
	enc.CallerKey = "caller"
	return cfg
}

func initLogger() {
	baseLogger, loggerErr = productionConfig().Build(zap.AddCaller())
	if loggerErr != nil {
		baseLogger = zap.NewNop()
	}
}

// Logger returns the process-wide logger. It is built once; a build failure
// leaves a no-op logger in place and is reported by Err.
func Logger() *zap.Logger {
	loggerOnce.Do(initLogger)
	return baseLogger
}

// Sync flushes buffered log entries. Call during shutdown.
func Sync() error {
	loggerOnce.Do(initLogger)
	return baseLogger.Sync()
}

// Err reports initialization failure, if any.
func Err() error {
	loggerOnce.Do(initLogger)
	return loggerErr
}

// ReportInit logs and returns the initialization failure, if any. Both
// services call it first thing so a silent no-op logger is never mistaken
// for a quiet process.
func ReportInit(ctx context.Context) error {
	err := Err()
	if err != nil {
		LogError(ctx, "logger init error", err)
	}
	return err
}
