package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gdmcare/gdmcare/internal/domain/audit"
	"github.com/gdmcare/gdmcare/internal/domain/patient"
)

type mockRepo struct {
	metrics map[uuid.UUID]*Metrics
}

func newMockRepo() *mockRepo {
	return &mockRepo{metrics: make(map[uuid.UUID]*Metrics)}
}

func (m *mockRepo) Create(ctx context.Context, rec *Metrics) error {
	rec.ID = uuid.New()
	clone := *rec
	m.metrics[rec.ID] = &clone
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Metrics, error) {
	rec, ok := m.metrics[id]
	if !ok {
		return nil, errors.New("not found")
	}
	clone := *rec
	return &clone, nil
}

func (m *mockRepo) Update(ctx context.Context, rec *Metrics) error {
	if _, ok := m.metrics[rec.ID]; !ok {
		return errors.New("not found")
	}
	clone := *rec
	m.metrics[rec.ID] = &clone
	return nil
}

func (m *mockRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Metrics, int, error) {
	var items []*Metrics
	for _, rec := range m.metrics {
		if rec.PatientID == patientID {
			items = append(items, rec)
		}
	}
	return items, len(items), nil
}

func (m *mockRepo) LatestForPatient(ctx context.Context, patientID uuid.UUID) (*Metrics, error) {
	var latest *Metrics
	for _, rec := range m.metrics {
		if rec.PatientID != patientID {
			continue
		}
		if latest == nil || rec.VisitDate.After(latest.VisitDate) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, errors.New("not found")
	}
	return latest, nil
}

type mockPatients struct {
	patients map[uuid.UUID]*patient.Patient
}

func (m *mockPatients) Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

type mockAuditor struct {
	entries []*audit.Entry
}

func (m *mockAuditor) Record(ctx context.Context, e *audit.Entry) {
	m.entries = append(m.entries, e)
}

func newTestService() (*Service, *mockRepo, *mockPatients, *mockAuditor) {
	repo := newMockRepo()
	patients := &mockPatients{patients: make(map[uuid.UUID]*patient.Patient)}
	auditor := &mockAuditor{}
	return NewService(repo, patients, auditor), repo, patients, auditor
}

func addPatient(patients *mockPatients, active bool) uuid.UUID {
	id := uuid.New()
	patients.patients[id] = &patient.Patient{
		ID:          id,
		FirstName:   "Maria",
		LastName:    "Santos",
		DateOfBirth: time.Date(1994, 2, 10, 0, 0, 0, 0, time.UTC),
		Active:      active,
	}
	return id
}

func TestCreate(t *testing.T) {
	svc, repo, patients, auditor := newTestService()
	ctx := context.Background()
	pid := addPatient(patients, true)

	m := &Metrics{PatientID: pid, BMI: fp(27.3)}
	if err := svc.Create(ctx, m, uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored := repo.metrics[m.ID]
	if stored == nil {
		t.Fatal("metrics not stored")
	}
	if stored.VisitDate.IsZero() {
		t.Error("visit date should default to now")
	}
	if len(auditor.entries) != 1 || auditor.entries[0].Action != audit.ActionAddMetrics {
		t.Errorf("expected ADD_CLINICAL_METRICS audit, got %+v", auditor.entries)
	}
}

func TestCreate_UnknownPatient(t *testing.T) {
	svc, _, _, _ := newTestService()
	m := &Metrics{PatientID: uuid.New()}
	if err := svc.Create(context.Background(), m, uuid.New()); err == nil {
		t.Error("expected error for unknown patient")
	}
}

func TestCreate_DeactivatedPatient(t *testing.T) {
	svc, _, patients, _ := newTestService()
	pid := addPatient(patients, false)
	m := &Metrics{PatientID: pid}
	if err := svc.Create(context.Background(), m, uuid.New()); err == nil {
		t.Error("expected error for deactivated patient")
	}
}

func TestUpdate_PreservesPatientID(t *testing.T) {
	svc, repo, patients, _ := newTestService()
	ctx := context.Background()
	pid := addPatient(patients, true)

	m := &Metrics{PatientID: pid, BMI: fp(27.3)}
	if err := svc.Create(ctx, m, uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	update := &Metrics{ID: m.ID, PatientID: uuid.New(), BMI: fp(29.0)}
	if err := svc.Update(ctx, update, uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.metrics[m.ID].PatientID != pid {
		t.Error("update must not reassign metrics to another patient")
	}
	if *repo.metrics[m.ID].BMI != 29.0 {
		t.Error("bmi not updated")
	}
}

func TestLatest(t *testing.T) {
	svc, _, patients, _ := newTestService()
	ctx := context.Background()
	pid := addPatient(patients, true)

	older := &Metrics{PatientID: pid, VisitDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), BMI: fp(26.0)}
	newer := &Metrics{PatientID: pid, VisitDate: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), BMI: fp(27.5)}
	if err := svc.Create(ctx, older, uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Create(ctx, newer, uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	latest, err := svc.Latest(ctx, pid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *latest.BMI != 27.5 {
		t.Errorf("latest bmi %v, want 27.5", *latest.BMI)
	}
}
