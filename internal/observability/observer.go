// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// StandardObserver implements observability for all components
type StandardObserver struct {
	level         ObservabilityLevel
	writer        io.Writer
	logger        *zap.Logger
	runID         string
	DebugObserver *DebugObserver // Reference to debug observer when in debug mode
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// NewStandardObserver creates observability component
func NewStandardObserver(level ObservabilityLevel, writer io.Writer) *StandardObserver {
	if writer == nil {
		writer = io.Discard
	}

	runID := uuid.NewString()
	return &StandardObserver{
		level:  level,
		writer: writer,
		logger: newLogger(level, writer).With(zap.String("run_id", runID)),
		runID:  runID,
	}
}

// newLogger builds a JSON zap logger writing to writer. Metrics level keeps
// warnings and errors, debug level keeps everything.
func newLogger(level ObservabilityLevel, writer io.Writer) *zap.Logger {
	if level == ObservabilityOff {
		return zap.NewNop()
	}

	minLevel := zapcore.WarnLevel
	if level == ObservabilityDebug {
		minLevel = zapcore.DebugLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.Lock(zapcore.AddSync(writer)), minLevel)
	return zap.New(core)
}

// Logger returns the structured logger scoped to this run
func (o *StandardObserver) Logger() *zap.Logger {
	if o == nil || o.logger == nil {
		return zap.NewNop()
	}
	return o.logger
}

// RunID returns the identifier attached to every record of this run
func (o *StandardObserver) RunID() string {
	return o.runID
}

// Level returns the configured observability level
func (o *StandardObserver) Level() ObservabilityLevel {
	return o.level
}

// StartTiming returns a function to complete timing
func (o *StandardObserver) StartTiming(component, operation, filePath string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		duration := time.Since(start)

		data := StandardObservabilityData{
			Component:  component,
			Operation:  operation,
			FilePath:   filePath,
			DurationMs: duration.Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		}

		o.LogOperation(data)
	}
}

// LogOperation logs operation data
func (o *StandardObserver) LogOperation(data StandardObservabilityData) {
	if o.level == ObservabilityOff {
		return
	}

	data.RequestID = o.runID

	// Only log operation records in debug mode
	if o.level == ObservabilityDebug {
		fields := []zap.Field{
			zap.String("component", data.Component),
			zap.String("operation", data.Operation),
			zap.Int64("duration_ms", data.DurationMs),
			zap.Bool("success", data.Success),
		}
		if data.FilePath != "" {
			fields = append(fields, zap.String("file_path", data.FilePath))
		}
		if data.Error != "" {
			fields = append(fields, zap.String("error", data.Error))
		}
		if data.MatchCount > 0 {
			fields = append(fields, zap.Int("match_count", data.MatchCount))
		}
		if len(data.Metadata) > 0 {
			fields = append(fields, zap.Any("metadata", data.Metadata))
		}
		o.logger.Debug("operation", fields...)
	}
}

// StandardObservabilityData for all components
type StandardObservabilityData struct {
	Component     string                 `json:"component"`
	Operation     string                 `json:"operation"`
	RequestID     string                 `json:"request_id"`
	FilePath      string                 `json:"file_path,omitempty"`
	DurationMs    int64                  `json:"duration_ms,omitempty"`
	Success       bool                   `json:"success"`
	Error         string                 `json:"error,omitempty"`
	ContentLength int                    `json:"content_length,omitempty"`
	MatchCount    int                    `json:"match_count,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// New returns the observer matching the requested verbosity. Debug mode wires a
// DebugObserver so components can emit step traces.
func New(debug bool, writer io.Writer) *StandardObserver {
	if debug {
		return NewDebugObserver(writer).StandardObserver
	}
	return NewStandardObserver(ObservabilityMetrics, writer)
}
