package ports

import "context"

// Extractor turns raw uploaded bytes of one format into normalized text for
// chunking. The "ai" extraction method is layered on top of these.
type Extractor interface {
	Format() string
	Extract(ctx context.Context, data []byte) (string, error)
}
