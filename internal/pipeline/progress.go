package pipeline

import "log/slog"

// ProgressSink receives coarse proportional progress reports. Reports are
// purely observational and never affect control flow.
type ProgressSink interface {
	Report(message string, increment float64)
}

type logProgress struct {
	log *slog.Logger
}

// NewLogProgress returns a ProgressSink that emits each report as a log
// record.
func NewLogProgress(log *slog.Logger) ProgressSink {
	return &logProgress{log: log}
}

func (p *logProgress) Report(message string, increment float64) {
	p.log.
		With("increment", increment).
		Info(message)
}
