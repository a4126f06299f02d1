package ports

import (
	"context"
	"io"

	"github.com/muhammadawaislaal/go_lab_analysis/internal/core/domain"
)

// StreamExtractor defines the interface for extracting lab records from an
// input stream without loading the whole document into memory.
type StreamExtractor interface {
	// ExtractStream reads the stream to EOF and returns the extracted
	// records with offsets relative to the start of the stream.
	ExtractStream(ctx context.Context, r io.Reader) ([]domain.LabRecord, error)
}
