package domain

import "time"

// ProgressSnapshot is an immutable readout of a project's progress derived
// from chunk outcomes at a point in time. Snapshots are superseded, never
// mutated; Seq orders snapshots of the same project.
type ProgressSnapshot struct {
	ProjectID       int64     `json:"project_id"`
	Seq             uint64    `json:"seq"`
	CompletedChunks int       `json:"completed_chunks"`
	TotalChunks     int       `json:"total_chunks"`
	Progress        float64   `json:"progress"`
	Status          Status    `json:"status"`
	LastUpdated     time.Time `json:"last_updated"`
}
