package domain

import "time"

// Outcome is the terminal-or-not result of one chunk translation.
type Outcome string

const (
	OutcomePending  Outcome = "pending"
	OutcomeInFlight Outcome = "in_flight"
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
)

// Terminal reports whether the outcome will not change without a retry.
func (o Outcome) Terminal() bool {
	return o == OutcomeSuccess || o == OutcomeFailed
}

// Chunk is the smallest schedulable unit of source content for one target
// language. Identity is (ProjectID, Seq, TargetLang); Seq defines reassembly
// order and is contiguous from 0 per (project, target language) pair.
type Chunk struct {
	ID             int64     `json:"id"`
	ProjectID      int64     `json:"project_id"`
	Seq            int       `json:"seq"`
	TargetLang     string    `json:"target_lang"`
	SourceText     string    `json:"source_text"`
	TranslatedText string    `json:"translated_text"`
	Outcome        Outcome   `json:"outcome"`
	Attempts       int       `json:"attempts"`
	LastError      string    `json:"last_error"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
