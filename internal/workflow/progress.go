package workflow

import (
	"context"
	"log/slog"

	"clipforge/internal/logging"
	"clipforge/internal/queue"
)

// Event is one structured progress report. Progress is 0-100 and monotonic
// within a job.
type Event struct {
	JobID    int64
	BatchID  string
	Progress float64
	Stage    string
	Message  string
}

// Publisher receives progress events as jobs advance.
type Publisher interface {
	Publish(Event)
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(Event)

// Publish calls the wrapped function.
func (f PublisherFunc) Publish(event Event) { f(event) }

// logPublisher writes progress events to the structured log.
type logPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher returns a publisher that logs each event.
func NewLogPublisher(logger *slog.Logger) Publisher {
	return &logPublisher{logger: logging.NewComponentLogger(logger, "progress")}
}

func (p *logPublisher) Publish(event Event) {
	p.logger.Info("progress",
		logging.Int64(logging.FieldJobID, event.JobID),
		logging.String(logging.FieldBatchID, event.BatchID),
		logging.String(logging.FieldStage, event.Stage),
		logging.Float64("percent", event.Progress),
		logging.String("message", event.Message),
	)
}

// Stage progress sub-ranges of the job's overall 0-100 bar. Rendering takes
// the largest slice; its fraction maps linearly into [30, 85].
const (
	progressLoading     = 5.0
	progressTranscribe  = 15.0
	progressTranslate   = 20.0
	progressDubbing     = 30.0
	progressRenderStart = 30.0
	progressRenderEnd   = 85.0
	progressConvert     = 92.0
	progressValidate    = 98.0
)

// reportProgress clamps, persists, and publishes one progress update.
func (m *Manager) reportProgress(ctx context.Context, job *queue.Job, stage, message string, percent float64) {
	job.SetProgress(stage, message, percent)
	if err := m.store.UpdateProgress(ctx, job); err != nil {
		m.logger.Warn("persist progress", logging.Error(err))
	}
	if m.publisher != nil {
		m.publisher.Publish(Event{
			JobID:    job.ID,
			BatchID:  job.BatchID,
			Progress: job.ProgressPercent,
			Stage:    stage,
			Message:  message,
		})
	}
}
