package progress

import (
	"time"

	"github.com/alhaneef/text-weaver-pro/internal/domain"
)

// Phase is the control state the orchestrator holds for a project,
// independent of individual chunk outcomes.
type Phase int

const (
	// Idle means no run is active and no pause/cancel flag is set.
	Idle Phase = iota
	Running
	Paused
	Cancelled
)

// Derive computes the project status from chunk outcomes and the control
// phase. Status is never stored authoritatively: it is always recomputable
// from these inputs, so a crash mid-run cannot leave a lying status behind.
func Derive(chunks []*domain.Chunk, phase Phase) domain.Status {
	if phase == Cancelled {
		return domain.StatusCancelled
	}

	total := len(chunks)
	success, failed, terminal := tally(chunks)

	if total == 0 {
		// An empty project has nothing left to do once a run starts.
		if phase == Running {
			return domain.StatusCompleted
		}
		return domain.StatusReady
	}

	if terminal == total {
		if failed > 0 {
			return domain.StatusPartial
		}
		return domain.StatusCompleted
	}

	switch phase {
	case Paused:
		return domain.StatusPaused
	case Running:
		return domain.StatusProcessing
	}

	// Idle with work remaining: either nothing has run yet, or a previous
	// run stopped mid-way and outcomes were reset.
	if success > 0 || failed > 0 {
		return domain.StatusPaused
	}
	return domain.StatusReady
}

// Snapshot builds the externally visible progress view for a project.
// Progress is the completed fraction in [0,1] and counts only successful
// chunks; failed and in-flight chunks do not move the bar.
func Snapshot(projectID int64, chunks []*domain.Chunk, phase Phase, now time.Time) domain.ProgressSnapshot {
	total := len(chunks)
	success, _, _ := tally(chunks)

	var frac float64
	if total > 0 {
		frac = float64(success) / float64(total)
	}
	return domain.ProgressSnapshot{
		ProjectID:       projectID,
		CompletedChunks: success,
		TotalChunks:     total,
		Progress:        frac,
		Status:          Derive(chunks, phase),
		LastUpdated:     now,
	}
}

func tally(chunks []*domain.Chunk) (success, failed, terminal int) {
	for _, c := range chunks {
		switch c.Outcome {
		case domain.OutcomeSuccess:
			success++
			terminal++
		case domain.OutcomeFailed:
			failed++
			terminal++
		}
	}
	return success, failed, terminal
}
