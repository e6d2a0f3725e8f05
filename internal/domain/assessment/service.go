package assessment

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/gdmcare/gdmcare/internal/domain/audit"
	"github.com/gdmcare/gdmcare/internal/domain/metrics"
	"github.com/gdmcare/gdmcare/internal/domain/patient"
	"github.com/gdmcare/gdmcare/internal/scoring"
)

// Auditor records audit entries without failing the caller.
type Auditor interface {
	Record(ctx context.Context, e *audit.Entry)
}

// PatientDirectory resolves patient records for ownership checks.
type PatientDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// MetricsDirectory resolves recorded clinical metrics.
type MetricsDirectory interface {
	Latest(ctx context.Context, patientID uuid.UUID) (*metrics.Metrics, error)
}

type Service struct {
	assessments Repository
	patients    PatientDirectory
	metrics     MetricsDirectory
	engine      *scoring.Engine
	auditor     Auditor
}

func NewService(assessments Repository, patients PatientDirectory, metricsDir MetricsDirectory,
	engine *scoring.Engine, auditor Auditor) *Service {
	return &Service{assessments: assessments, patients: patients, metrics: metricsDir, engine: engine, auditor: auditor}
}

// Assess scores the given features and persists the result for the patient.
// A *scoring.ValidationError passes through unchanged so the handler can
// return the full message list.
func (s *Service) Assess(ctx context.Context, patientID uuid.UUID, f scoring.Features, assessedBy uuid.UUID) (*Assessment, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	p, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("patient not found")
	}
	if !p.Active {
		return nil, fmt.Errorf("patient is deactivated")
	}

	pred, err := s.engine.Predict(f)
	if err != nil {
		return nil, err
	}

	a := &Assessment{
		PatientID:      patientID,
		AssessedBy:     assessedBy,
		Features:       pred.FeaturesUsed,
		RiskScore:      pred.RiskScore,
		RiskLabel:      pred.RiskLabel,
		RiskPercentage: pred.RiskPercentage,
		ModelVersion:   pred.ModelVersion,
		ThresholdLow:   pred.Thresholds.Low,
		ThresholdHigh:  pred.Thresholds.High,
	}
	if err := s.assessments.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("persist assessment: %w", err)
	}

	s.auditor.Record(ctx, &audit.Entry{
		UserID:   &assessedBy,
		Action:   audit.ActionPerformAssessment,
		Entity:   strPtr("risk_assessment"),
		EntityID: &a.ID,
		Details:  strPtr(fmt.Sprintf("Assessed patient %s: %s (%.1f%%)", patientID, a.RiskLabel, a.RiskPercentage)),
	})
	return a, nil
}

// AssessFromMetrics scores a patient from their most recent clinical metrics,
// the usual entry point once a visit has been recorded.
func (s *Service) AssessFromMetrics(ctx context.Context, patientID uuid.UUID, assessedBy uuid.UUID) (*Assessment, error) {
	p, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("patient not found")
	}
	if !p.Active {
		return nil, fmt.Errorf("patient is deactivated")
	}

	m, err := s.metrics.Latest(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("no clinical metrics recorded for patient")
	}
	if !m.CompleteForPrediction() {
		return nil, fmt.Errorf("latest clinical metrics are incomplete for risk prediction")
	}

	return s.Assess(ctx, patientID, m.FeatureVector(p.Age()), assessedBy)
}

// Predict scores features without persisting anything.
func (s *Service) Predict(ctx context.Context, f scoring.Features) (*scoring.Prediction, error) {
	return s.engine.Predict(f)
}

// View is Get plus an access log entry for the audit trail.
func (s *Service) View(ctx context.Context, id uuid.UUID, viewedBy uuid.UUID) (*Assessment, error) {
	a, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, &audit.Entry{
		UserID:   &viewedBy,
		Action:   audit.ActionViewAssessment,
		Entity:   strPtr("risk_assessment"),
		EntityID: &a.ID,
	})
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	return s.assessments.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Assessment, int, error) {
	return s.assessments.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Assessment, int, error) {
	return s.assessments.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) LatestForPatient(ctx context.Context, patientID uuid.UUID) (*Assessment, error) {
	return s.assessments.LatestForPatient(ctx, patientID)
}

// Statistics aggregates label counts across all assessments.
func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	counts, err := s.assessments.CountByLabel(ctx)
	if err != nil {
		return nil, err
	}
	stats := &Statistics{
		LowRisk:      counts[scoring.LabelLow],
		ModerateRisk: counts[scoring.LabelModerate],
		HighRisk:     counts[scoring.LabelHigh],
	}
	stats.Total = stats.LowRisk + stats.ModerateRisk + stats.HighRisk
	if stats.Total > 0 {
		stats.LowPercentage = pct(stats.LowRisk, stats.Total)
		stats.ModeratePercentage = pct(stats.ModerateRisk, stats.Total)
		stats.HighPercentage = pct(stats.HighRisk, stats.Total)
	}
	return stats, nil
}

// ModelStatus exposes the engine's static metadata.
func (s *Service) ModelStatus() scoring.Status {
	return s.engine.Status()
}

func pct(count, total int) float64 {
	return math.Round(float64(count)/float64(total)*1000) / 10
}

func strPtr(s string) *string { return &s }
