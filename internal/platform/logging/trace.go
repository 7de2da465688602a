package logging

import (
	"regexp"

	"go.uber.org/zap"
)

const traceparentHeader = "traceparent"

// W3C Trace Context format: {version}-{trace-id}-{parent-id}-{trace-flags}
// Example: 00-ab42124a3c573678d4d8b21ba52df3bf-d21f7bc17caa5aba-01
var traceparentRe = regexp.MustCompile(`^([0-9a-fA-F]{2})-([0-9a-fA-F]{32})-([0-9a-fA-F]{16})-([0-9a-fA-F]{2})$`)

type traceContext struct {
	traceID string
	spanID  string
	sampled bool
}

func parseTraceparent(header string) (traceContext, bool) {
	m := traceparentRe.FindStringSubmatch(header)
	if len(m) != 5 {
		return traceContext{}, false
	}
	// All-zero trace and parent IDs are invalid in W3C Trace Context.
	if m[2] == "00000000000000000000000000000000" || m[3] == "0000000000000000" {
		return traceContext{}, false
	}
	return traceContext{traceID: m[2], spanID: m[3], sampled: m[4] == "01"}, true
}

// requestFields returns the correlation fields attached to every log line of a request.
func requestFields(traceparent, requestID string) []zap.Field {
	var fields []zap.Field
	if tc, ok := parseTraceparent(traceparent); ok {
		fields = append(fields,
			zap.String("traceId", tc.traceID),
			zap.String("spanId", tc.spanID),
			zap.Bool("traceSampled", tc.sampled),
		)
	}
	if requestID != "" {
		fields = append(fields, zap.String("requestId", requestID))
	}
	return fields
}

func loggerWithRequest(base *zap.Logger, traceparent, requestID string) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	fields := requestFields(traceparent, requestID)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}
