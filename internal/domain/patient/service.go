package patient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gdmcare/gdmcare/internal/domain/audit"
)

// Auditor records audit entries without failing the caller.
type Auditor interface {
	Record(ctx context.Context, e *audit.Entry)
}

type Service struct {
	patients Repository
	auditor  Auditor
}

func NewService(patients Repository, auditor Auditor) *Service {
	return &Service{patients: patients, auditor: auditor}
}

func (s *Service) validate(p *Patient) error {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)

	if p.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if p.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	if p.DateOfBirth.IsZero() {
		return fmt.Errorf("date_of_birth is required")
	}
	if p.DateOfBirth.After(time.Now()) {
		return fmt.Errorf("date_of_birth cannot be in the future")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, p *Patient, createdBy uuid.UUID) error {
	if err := s.validate(p); err != nil {
		return err
	}
	if createdBy == uuid.Nil {
		return fmt.Errorf("creating user is required")
	}
	p.CreatedBy = createdBy
	p.Active = true
	if err := s.patients.Create(ctx, p); err != nil {
		return fmt.Errorf("create patient: %w", err)
	}

	s.auditor.Record(ctx, &audit.Entry{
		UserID:   &createdBy,
		Action:   audit.ActionCreatePatient,
		Entity:   strPtr("patient"),
		EntityID: &p.ID,
		Details:  strPtr(fmt.Sprintf("Created patient %s", p.FullName())),
	})
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

// View is Get plus an access log entry. Record viewing is auditable PHI access,
// so the HTTP handler goes through here while internal lookups use Get.
func (s *Service) View(ctx context.Context, id uuid.UUID, viewedBy uuid.UUID) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, &audit.Entry{
		UserID:   &viewedBy,
		Action:   audit.ActionViewPatient,
		Entity:   strPtr("patient"),
		EntityID: &p.ID,
	})
	return p, nil
}

func (s *Service) Update(ctx context.Context, p *Patient, updatedBy uuid.UUID) error {
	existing, err := s.patients.GetByID(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("get patient: %w", err)
	}
	if !existing.Active {
		return fmt.Errorf("patient is deactivated")
	}
	if err := s.validate(p); err != nil {
		return err
	}
	p.Active = existing.Active
	if err := s.patients.Update(ctx, p); err != nil {
		return fmt.Errorf("update patient: %w", err)
	}

	s.auditor.Record(ctx, &audit.Entry{
		UserID:   &updatedBy,
		Action:   audit.ActionUpdatePatient,
		Entity:   strPtr("patient"),
		EntityID: &p.ID,
		Details:  strPtr(fmt.Sprintf("Updated patient %s", p.FullName())),
	})
	return nil
}

// Deactivate soft-deletes a patient; history stays queryable by id.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get patient: %w", err)
	}
	p.Active = false
	if err := s.patients.Update(ctx, p); err != nil {
		return fmt.Errorf("deactivate patient: %w", err)
	}

	s.auditor.Record(ctx, &audit.Entry{
		UserID:   &deletedBy,
		Action:   audit.ActionDeletePatient,
		Entity:   strPtr("patient"),
		EntityID: &p.ID,
		Details:  strPtr(fmt.Sprintf("Deactivated patient %s", p.FullName())),
	})
	return nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

func (s *Service) Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.patients.List(ctx, limit, offset)
	}
	return s.patients.Search(ctx, query, limit, offset)
}

func strPtr(s string) *string { return &s }
