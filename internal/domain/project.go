package domain

import "time"

// Status is the lifecycle state of a project. It is derived from chunk
// outcomes plus the orchestrator's control phase, never set ad hoc.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusReady      Status = "ready"
	StatusProcessing Status = "processing"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
	StatusPartial    Status = "partial"
	StatusCancelled  Status = "cancelled"
	StatusError      Status = "error"
)

// Terminal reports whether no further automatic transition occurs from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusError
}

type Project struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	SourceLang      string    `json:"source_lang"` // "auto" until resolved
	TargetLangs     []string  `json:"target_langs"`
	FileType        string    `json:"file_type"`
	Status          Status    `json:"status"`
	TotalChunks     int       `json:"total_chunks"`
	CompletedChunks int       `json:"completed_chunks"`
	Progress        float64   `json:"progress"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ProjectFile struct {
	ID           int64     `json:"id"`
	ProjectID    int64     `json:"project_id"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	Content      string    `json:"content"`
	DetectedType string    `json:"detected_type"`
	UploadedAt   time.Time `json:"uploaded_at"`
}
