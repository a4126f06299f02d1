package ports

import (
	"context"

	"github.com/muhammadawaislaal/go_lab_analysis/internal/core/domain"
)

// ResultClassifier defines the interface for grading extracted lab records
// against reference ranges. Implementations must preserve input order and
// return one result per record.
type ResultClassifier interface {
	Classify(ctx context.Context, records []domain.LabRecord, patient *domain.Patient) []domain.ClassifiedResult
}
