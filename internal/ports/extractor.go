package ports

import (
	"context"

	"github.com/muhammadawaislaal/go_lab_analysis/internal/core/domain"
)

// RecordExtractor defines the interface for pulling structured lab
// measurements out of free-form report text.
type RecordExtractor interface {
	Extract(ctx context.Context, text string) []domain.LabRecord
}
