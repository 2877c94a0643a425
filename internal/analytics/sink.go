// Package analytics defines the event sink used for funnel tracking.
// The pipeline emits named events through the Sink interface so the core
// never depends on a live analytics backend; the default sink is a no-op.
package analytics

import "go.uber.org/zap"

// Funnel event names emitted by the submission pipeline.
const (
	EventSubmissionStarted = "Started Validation"
	EventFilesAccepted     = "Files Accepted"
	EventApplicantSaved    = "Applicant Saved"
	EventAnalysisComplete  = "Analysis Completed"
	EventAnalysisFailed    = "Analysis Failed"
	EventReportDownloaded  = "Downloaded Report"
)

// Sink receives named events with optional properties.
type Sink interface {
	Track(event string, props map[string]any)
}

// NopSink discards all events.
type NopSink struct{}

// Track implements Sink.
func (NopSink) Track(string, map[string]any) {}

// LogSink writes events to a zap logger, useful in development and as a
// stand-in for a hosted analytics backend.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink returns a LogSink. A nil logger falls back to a no-op logger.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Track implements Sink.
func (s *LogSink) Track(event string, props map[string]any) {
	fields := make([]zap.Field, 0, len(props)+1)
	for k, v := range props {
		fields = append(fields, zap.Any(k, v))
	}
	s.logger.Info("event: "+event, fields...)
}
