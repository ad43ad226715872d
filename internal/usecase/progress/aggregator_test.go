package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alhaneef/text-weaver-pro/internal/domain"
)

func mk(outcomes ...domain.Outcome) []*domain.Chunk {
	out := make([]*domain.Chunk, 0, len(outcomes))
	for i, o := range outcomes {
		out = append(out, &domain.Chunk{ProjectID: 1, Seq: i, TargetLang: "de", Outcome: o})
	}
	return out
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name   string
		chunks []*domain.Chunk
		phase  Phase
		want   domain.Status
	}{
		{"cancelled wins over everything", mk(domain.OutcomeSuccess, domain.OutcomeSuccess), Cancelled, domain.StatusCancelled},
		{"empty idle stays ready", nil, Idle, domain.StatusReady},
		{"empty running completes immediately", nil, Running, domain.StatusCompleted},
		{"all success completes", mk(domain.OutcomeSuccess, domain.OutcomeSuccess), Idle, domain.StatusCompleted},
		{"all success completes even mid-run", mk(domain.OutcomeSuccess), Running, domain.StatusCompleted},
		{"any failure among terminal is partial", mk(domain.OutcomeSuccess, domain.OutcomeFailed), Idle, domain.StatusPartial},
		{"all failed is partial", mk(domain.OutcomeFailed, domain.OutcomeFailed), Idle, domain.StatusPartial},
		{"work remaining while running is processing", mk(domain.OutcomeSuccess, domain.OutcomePending), Running, domain.StatusProcessing},
		{"in-flight while running is processing", mk(domain.OutcomeInFlight), Running, domain.StatusProcessing},
		{"work remaining while paused is paused", mk(domain.OutcomeSuccess, domain.OutcomePending), Paused, domain.StatusPaused},
		{"idle with partial results is paused", mk(domain.OutcomeSuccess, domain.OutcomePending), Idle, domain.StatusPaused},
		{"idle untouched is ready", mk(domain.OutcomePending, domain.OutcomePending), Idle, domain.StatusReady},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Derive(tt.chunks, tt.phase))
		})
	}
}

func TestSnapshotCountsOnlySuccesses(t *testing.T) {
	now := time.Now()
	s := Snapshot(7, mk(domain.OutcomeSuccess, domain.OutcomeFailed, domain.OutcomeInFlight, domain.OutcomePending), Running, now)

	assert.Equal(t, int64(7), s.ProjectID)
	assert.Equal(t, 1, s.CompletedChunks)
	assert.Equal(t, 4, s.TotalChunks)
	assert.Equal(t, 0.25, s.Progress)
	assert.Equal(t, domain.StatusProcessing, s.Status)
	assert.Equal(t, now, s.LastUpdated)
}

func TestSnapshotEmptyProjectProgressZero(t *testing.T) {
	s := Snapshot(1, nil, Idle, time.Now())
	assert.Equal(t, 0.0, s.Progress)
	assert.Equal(t, 0, s.TotalChunks)
	assert.Equal(t, domain.StatusReady, s.Status)
}
