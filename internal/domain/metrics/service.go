package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gdmcare/gdmcare/internal/domain/audit"
	"github.com/gdmcare/gdmcare/internal/domain/patient"
)

// Auditor records audit entries without failing the caller.
type Auditor interface {
	Record(ctx context.Context, e *audit.Entry)
}

// PatientDirectory resolves patient records for ownership checks.
type PatientDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

type Service struct {
	metrics  Repository
	patients PatientDirectory
	auditor  Auditor
}

func NewService(metrics Repository, patients PatientDirectory, auditor Auditor) *Service {
	return &Service{metrics: metrics, patients: patients, auditor: auditor}
}

func (s *Service) activePatient(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	p, err := s.patients.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("patient not found")
	}
	if !p.Active {
		return nil, fmt.Errorf("patient is deactivated")
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, m *Metrics, recordedBy uuid.UUID) error {
	if _, err := s.activePatient(ctx, m.PatientID); err != nil {
		return err
	}
	if m.VisitDate.IsZero() {
		m.VisitDate = time.Now()
	}
	if err := s.metrics.Create(ctx, m); err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	s.auditor.Record(ctx, &audit.Entry{
		UserID:   &recordedBy,
		Action:   audit.ActionAddMetrics,
		Entity:   strPtr("clinical_metrics"),
		EntityID: &m.ID,
		Details:  strPtr(fmt.Sprintf("Recorded clinical metrics for patient %s", m.PatientID)),
	})
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Metrics, error) {
	return s.metrics.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, m *Metrics, updatedBy uuid.UUID) error {
	existing, err := s.metrics.GetByID(ctx, m.ID)
	if err != nil {
		return fmt.Errorf("get metrics: %w", err)
	}
	m.PatientID = existing.PatientID
	if m.VisitDate.IsZero() {
		m.VisitDate = existing.VisitDate
	}
	if err := s.metrics.Update(ctx, m); err != nil {
		return fmt.Errorf("update metrics: %w", err)
	}

	s.auditor.Record(ctx, &audit.Entry{
		UserID:   &updatedBy,
		Action:   audit.ActionUpdateMetrics,
		Entity:   strPtr("clinical_metrics"),
		EntityID: &m.ID,
		Details:  strPtr(fmt.Sprintf("Updated clinical metrics for patient %s", m.PatientID)),
	})
	return nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Metrics, int, error) {
	return s.metrics.ListByPatient(ctx, patientID, limit, offset)
}

// Latest returns the most recent visit for a patient, by visit date.
func (s *Service) Latest(ctx context.Context, patientID uuid.UUID) (*Metrics, error) {
	return s.metrics.LatestForPatient(ctx, patientID)
}

func strPtr(s string) *string { return &s }
