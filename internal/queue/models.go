package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a pipeline run.
type Status string

const (
	StatusPending          Status = "pending"
	StatusResolving        Status = "resolving"
	StatusResolved         Status = "resolved"
	StatusBuildingTimeline Status = "building_timeline"
	StatusTimelineBuilt    Status = "timeline_built"
	StatusSyncingCaptions  Status = "syncing_captions"
	StatusCaptionsSynced   Status = "captions_synced"
	StatusCompositing      Status = "compositing"
	StatusComposited       Status = "composited"
	StatusExporting        Status = "exporting"
	StatusCompleted        Status = "completed"
	StatusFailed           Status = "failed"
)

// Mode selects how scene assets reach the pipeline.
type Mode string

const (
	// ModeLive invokes the external generator hook before resolution.
	ModeLive Mode = "live"
	// ModeTest validates pre-placed files and skips generation.
	ModeTest Mode = "test"
)

var allStatuses = []Status{
	StatusPending,
	StatusResolving,
	StatusResolved,
	StatusBuildingTimeline,
	StatusTimelineBuilt,
	StatusSyncingCaptions,
	StatusCaptionsSynced,
	StatusCompositing,
	StatusComposited,
	StatusExporting,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusResolving:        {},
	StatusBuildingTimeline: {},
	StatusSyncingCaptions:  {},
	StatusCompositing:      {},
	StatusExporting:        {},
}

// Run represents a pipeline run persisted in SQLite.
type Run struct {
	ID              int64
	Topic           string
	Mode            Mode
	AssetRoot       string
	OutputName      string
	Status          Status
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string

	// Stage output snapshots, JSON-encoded by the producing stage.
	ScenesJSON   string
	TimelineJSON string
	CaptionsJSON string

	CompositedFile string
	FinalFile      string
	ThumbnailFile  string
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

// ParseMode converts a string into a known Mode.
func ParseMode(value string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeLive:
		return ModeLive, true
	case ModeTest:
		return ModeTest, true
	default:
		return "", false
	}
}

// IsProcessing returns true when the status reflects an in-flight stage.
func (r Run) IsProcessing() bool {
	_, ok := processingStatuses[r.Status]
	return ok
}

// IsTerminal reports whether the run has finished, successfully or not.
func (r Run) IsTerminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// SetProgress updates all three progress fields together.
func (r *Run) SetProgress(stage, message string, percent float64) {
	r.ProgressStage = stage
	r.ProgressMessage = message
	r.ProgressPercent = percent
}

// SetProgressComplete sets progress to 100% with the given stage and message.
func (r *Run) SetProgressComplete(stage, message string) {
	r.SetProgress(stage, message, 100)
}

// SetFailed marks the run as failed with the given error message.
func (r *Run) SetFailed(message string) {
	r.Status = StatusFailed
	r.ErrorMessage = message
	r.ProgressPercent = 0
	r.ProgressMessage = message
	r.ProgressStage = "Failed"
}

// FailureStatus maps a stage error onto the terminal status to record.
func FailureStatus(err error) Status {
	if err == nil {
		return StatusCompleted
	}
	return StatusFailed
}

// StageLabel renders a status as a human-readable progress label.
func StageLabel(status Status) string {
	if status == "" {
		return ""
	}
	parts := strings.Fields(strings.ReplaceAll(string(status), "_", " "))
	for i, part := range parts {
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
