package domain

import "time"

type BatchAction string

const (
	BatchStart       BatchAction = "start"
	BatchPause       BatchAction = "pause"
	BatchCancel      BatchAction = "cancel"
	BatchRetryFailed BatchAction = "retry_failed"
	BatchDelete      BatchAction = "delete"
)

func (a BatchAction) Valid() bool {
	switch a {
	case BatchStart, BatchPause, BatchCancel, BatchRetryFailed, BatchDelete:
		return true
	}
	return false
}

type BatchStatus string

const (
	BatchRunning         BatchStatus = "running"
	BatchCompleted       BatchStatus = "completed"
	BatchPartiallyFailed BatchStatus = "partially_failed"
)

// BatchOutcome is the per-project result of a batch action. One project's
// error never rolls back actions already applied to other projects.
type BatchOutcome struct {
	ProjectID int64  `json:"project_id"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

// BatchOperation is ephemeral: it exists for the duration of the coordinated
// action and is reported back, not persisted.
type BatchOperation struct {
	ID         string                 `json:"id"`
	Action     BatchAction            `json:"action"`
	ProjectIDs []int64                `json:"project_ids"`
	Outcomes   map[int64]BatchOutcome `json:"outcomes"`
	Status     BatchStatus            `json:"status"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt time.Time              `json:"finished_at"`
}
