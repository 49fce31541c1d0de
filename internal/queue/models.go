package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a processing job.
type Status string

const (
	StatusPending      Status = "pending"
	StatusLoading      Status = "loading"
	StatusTranscribing Status = "transcribing"
	StatusTranslating  Status = "translating"
	StatusDubbing      Status = "dubbing"
	StatusRendering    Status = "rendering"
	StatusConverting   Status = "converting"
	StatusValidating   Status = "validating"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusLoading,
	StatusTranscribing,
	StatusTranslating,
	StatusDubbing,
	StatusRendering,
	StatusConverting,
	StatusValidating,
	StatusCompleted,
	StatusFailed,
}

// statusRank orders statuses for the monotonic-transition guard. Failed is a
// terminal sink reachable from anywhere; pending is only reachable again via
// an explicit stuck-job reset.
var statusRank = map[Status]int{
	StatusPending:      0,
	StatusLoading:      1,
	StatusTranscribing: 2,
	StatusTranslating:  3,
	StatusDubbing:      4,
	StatusRendering:    5,
	StatusConverting:   6,
	StatusValidating:   7,
	StatusCompleted:    8,
	StatusFailed:       9,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusLoading:      {},
	StatusTranscribing: {},
	StatusTranslating:  {},
	StatusDubbing:      {},
	StatusRendering:    {},
	StatusConverting:   {},
	StatusValidating:   {},
}

// Job represents a processing job persisted in SQLite.
type Job struct {
	ID              int64
	BatchID         string
	SourcePath      string
	Title           string
	Status          Status
	OutputFile      string
	DeliveredFile   string
	ArtifactDir     string
	ErrorMessage    string
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight stage.
func (j Job) IsProcessing() bool {
	_, ok := processingStatuses[j.Status]
	return ok
}

// IsTerminal reports whether the job reached a final state.
func (j Job) IsTerminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// CanTransition reports whether moving from one status to another respects
// the forward-only state machine.
func CanTransition(from, to Status) bool {
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	if to == StatusFailed {
		return from != StatusCompleted
	}
	return toRank >= fromRank
}

// SetProgress updates all three progress fields together. Percent never
// regresses within a job; a lower value is clamped to the current one.
func (j *Job) SetProgress(stage, message string, percent float64) {
	j.ProgressStage = stage
	j.ProgressMessage = message
	if percent < j.ProgressPercent && j.Status != StatusFailed {
		percent = j.ProgressPercent
	}
	if percent > 100 {
		percent = 100
	}
	j.ProgressPercent = percent
}

// SetFailed marks the job as failed with a user-facing message.
func (j *Job) SetFailed(message string) {
	j.Status = StatusFailed
	j.ErrorMessage = message
	j.ProgressStage = "error"
	j.ProgressMessage = message
}

// SetCompleted marks the job as completed with its final output.
func (j *Job) SetCompleted(outputFile string) {
	j.Status = StatusCompleted
	j.OutputFile = outputFile
	j.ProgressStage = "done"
	j.ProgressPercent = 100
	j.ProgressMessage = "export complete"
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
}
