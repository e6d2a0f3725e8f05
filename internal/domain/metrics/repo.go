package metrics

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Metrics) error
	GetByID(ctx context.Context, id uuid.UUID) (*Metrics, error)
	Update(ctx context.Context, m *Metrics) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Metrics, int, error)
	LatestForPatient(ctx context.Context, patientID uuid.UUID) (*Metrics, error)
}
