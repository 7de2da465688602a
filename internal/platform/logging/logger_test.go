package logging

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// resetLoggerForTest clears the singleton so the next Logger call rebuilds it.
func resetLoggerForTest() {
	loggerOnce = sync.Once{}
	baseLogger = nil
	loggerErr = nil
}

// stdoutRecords rebuilds the logger against a pipe standing in for stdout,
// runs emit and returns every JSON record it produced.
func stdoutRecords(t *testing.T, emit func()) []map[string]any {
	t.Helper()

	resetLoggerForTest()
	t.Cleanup(resetLoggerForTest)

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	defer func() { _ = r.Close() }()

	origStdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = origStdout }()

	emit()
	_ = Logger().Sync()
	if closeErr := w.Close(); closeErr != nil {
		t.Fatalf("failed to close writer: %v", closeErr)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read log output: %v", err)
	}

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("record %q is not JSON: %v", line, err)
		}
		records = append(records, rec)
	}
	return records
}

func TestStartupRecordShape(t *testing.T) {
	records := stdoutRecords(t, func() {
		LogInfo(context.Background(), "configured logger")
	})
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]

	if rec["severity"] != "INFO" || rec["message"] != "configured logger" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if _, exists := rec["level"]; exists {
		t.Fatalf("expected severity to replace level, got %v", rec)
	}
	ts, ok := rec["timestamp"].(string)
	if !ok {
		t.Fatalf("expected string timestamp, got %T", rec["timestamp"])
	}
	if _, err := time.Parse(rfc3339Micros, ts); err != nil {
		t.Fatalf("timestamp %q is not RFC 3339 with microseconds: %v", ts, err)
	}
	if caller, _ := rec["caller"].(string); !strings.Contains(caller, "logger_test.go") {
		t.Fatalf("expected caller in logger_test.go, got %v", rec["caller"])
	}
}

func TestHealthcheckRecordCarriesLoggerName(t *testing.T) {
	records := stdoutRecords(t, func() {
		Logger().Named("healthcheck").Info("health check endpoint called")
	})
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0]["logger"] != "healthcheck" {
		t.Fatalf("expected logger healthcheck, got %v", records[0]["logger"])
	}
}

func TestDebugRecordsAreDropped(t *testing.T) {
	records := stdoutRecords(t, func() {
		Logger().Debug("not shown")
		Logger().Info("shown")
	})
	if len(records) != 1 || records[0]["message"] != "shown" {
		t.Fatalf("expected only the info record, got %v", records)
	}
}

func TestProductionConfig(t *testing.T) {
	cfg := productionConfig()

	if len(cfg.OutputPaths) != 1 || cfg.OutputPaths[0] != "stdout" {
		t.Fatalf("expected stdout output, got %v", cfg.OutputPaths)
	}
	if len(cfg.ErrorOutputPaths) != 1 || cfg.ErrorOutputPaths[0] != "stdout" {
		t.Fatalf("expected stdout error output, got %v", cfg.ErrorOutputPaths)
	}
	if cfg.Encoding != "json" {
		t.Fatalf("expected json encoding, got %s", cfg.Encoding)
	}
	enc := cfg.EncoderConfig
	if enc.TimeKey != "timestamp" || enc.LevelKey != "severity" || enc.MessageKey != "message" || enc.CallerKey != "caller" {
		t.Fatalf("unexpected encoder keys: %+v", enc)
	}
	if cfg.Level.Level() != zapcore.InfoLevel {
		t.Fatalf("expected info level, got %s", cfg.Level.Level())
	}
}

func TestEncodeSeverity(t *testing.T) {
	tests := []struct {
		level zapcore.Level
		want  string
	}{
		{zapcore.DebugLevel, "DEBUG"},
		{zapcore.InfoLevel, "INFO"},
		{zapcore.WarnLevel, "WARNING"},
		{zapcore.ErrorLevel, "ERROR"},
		{zapcore.DPanicLevel, "CRITICAL"},
		{zapcore.PanicLevel, "ALERT"},
		{zapcore.FatalLevel, "EMERGENCY"},
		{zapcore.Level(99), "DEFAULT"},
	}

	for _, tt := range tests {
		enc := &captureArrayEncoder{}
		encodeSeverity(tt.level, enc)
		if len(enc.values) != 1 || enc.values[0] != tt.want {
			t.Errorf("encodeSeverity(%v) = %v, want %s", tt.level, enc.values, tt.want)
		}
	}
}

func TestEncodeTimeMicrosUsesUTC(t *testing.T) {
	enc := &captureArrayEncoder{}
	encodeTimeMicros(time.Date(2024, 6, 15, 12, 0, 0, 123456789, time.FixedZone("EST", -5*60*60)), enc)

	if len(enc.values) != 1 || enc.values[0] != "2024-06-15T17:00:00.123456Z" {
		t.Fatalf("unexpected timestamp: %v", enc.values)
	}
}

func TestLoggerBuiltOnce(t *testing.T) {
	resetLoggerForTest()
	t.Cleanup(resetLoggerForTest)

	if Logger() != Logger() {
		t.Fatal("expected Logger() to return the same instance")
	}
	if err := Err(); err != nil {
		t.Fatalf("expected successful build, got %v", err)
	}
	if err := Sync(); err != nil {
		t.Logf("Sync returned error (may be expected on some platforms): %v", err)
	}
}

func TestReportInitLogsBuildFailure(t *testing.T) {
	resetLoggerForTest()
	t.Cleanup(resetLoggerForTest)

	core, recorded := observer.New(zapcore.InfoLevel)
	loggerOnce.Do(func() {
		baseLogger = zap.New(core)
		loggerErr = errors.New("open stdout: bad file descriptor")
	})

	err := ReportInit(context.Background())
	if err == nil || err.Error() != "open stdout: bad file descriptor" {
		t.Fatalf("expected build failure to be returned, got %v", err)
	}

	entries := recorded.All()
	if len(entries) != 1 || entries[0].Message != "logger init error" {
		t.Fatalf("expected one init error record, got %+v", entries)
	}
	if entries[0].ContextMap()["error"] != "open stdout: bad file descriptor" {
		t.Fatalf("expected error field, got %+v", entries[0].ContextMap())
	}
}

func TestReportInitQuietOnSuccess(t *testing.T) {
	resetLoggerForTest()
	t.Cleanup(resetLoggerForTest)

	core, recorded := observer.New(zapcore.InfoLevel)
	loggerOnce.Do(func() { baseLogger = zap.New(core) })

	if err := ReportInit(context.Background()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if n := len(recorded.All()); n != 0 {
		t.Fatalf("expected no records, got %d", n)
	}
}

// captureArrayEncoder collects strings appended via the PrimitiveArrayEncoder interface.
type captureArrayEncoder struct {
	values []string
}

func (c *captureArrayEncoder) AppendBool(bool)             {}
func (c *captureArrayEncoder) AppendByteString([]byte)     {}
func (c *captureArrayEncoder) AppendComplex128(complex128) {}
func (c *captureArrayEncoder) AppendComplex64(complex64)   {}
func (c *captureArrayEncoder) AppendFloat64(float64)       {}
func (c *captureArrayEncoder) AppendFloat32(float32)       {}
func (c *captureArrayEncoder) AppendInt(int)               {}
func (c *captureArrayEncoder) AppendInt64(int64)           {}
func (c *captureArrayEncoder) AppendInt32(int32)           {}
func (c *captureArrayEncoder) AppendInt16(int16)           {}
func (c *captureArrayEncoder) AppendInt8(int8)             {}
func (c *captureArrayEncoder) AppendString(s string)       { c.values = append(c.values, s) }
func (c *captureArrayEncoder) AppendUint(uint)             {}
func (c *captureArrayEncoder) AppendUint64(uint64)         {}
func (c *captureArrayEncoder) AppendUint32(uint32)         {}
func (c *captureArrayEncoder) AppendUint16(uint16)         {}
func (c *captureArrayEncoder) AppendUint8(uint8)           {}
func (c *captureArrayEncoder) AppendUintptr(uintptr)       {}
