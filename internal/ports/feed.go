package ports

import "github.com/alhaneef/text-weaver-pro/internal/domain"

// ProgressPublisher receives every snapshot the aggregator derives.
// Publishing must be safe from concurrent worker goroutines.
type ProgressPublisher interface {
	Publish(snap domain.ProgressSnapshot)
}
