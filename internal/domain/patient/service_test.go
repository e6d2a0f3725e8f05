package patient

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gdmcare/gdmcare/internal/domain/audit"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	clone := *p
	m.patients[p.ID] = &clone
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, errors.New("not found")
	}
	clone := *p
	return &clone, nil
}

func (m *mockRepo) Update(ctx context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return errors.New("not found")
	}
	clone := *p
	m.patients[p.ID] = &clone
	return nil
}

func (m *mockRepo) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var items []*Patient
	for _, p := range m.patients {
		if p.Active {
			items = append(items, p)
		}
	}
	return items, len(items), nil
}

func (m *mockRepo) Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	var items []*Patient
	for _, p := range m.patients {
		if p.Active && (strings.Contains(strings.ToLower(p.FirstName), strings.ToLower(query)) ||
			strings.Contains(strings.ToLower(p.LastName), strings.ToLower(query))) {
			items = append(items, p)
		}
	}
	return items, len(items), nil
}

type mockAuditor struct {
	entries []*audit.Entry
}

func (m *mockAuditor) Record(ctx context.Context, e *audit.Entry) {
	m.entries = append(m.entries, e)
}

func newTestService() (*Service, *mockRepo, *mockAuditor) {
	repo := newMockRepo()
	auditor := &mockAuditor{}
	return NewService(repo, auditor), repo, auditor
}

func validPatient() *Patient {
	return &Patient{
		FirstName:   "Maria",
		LastName:    "Santos",
		DateOfBirth: time.Date(1994, 2, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreate(t *testing.T) {
	svc, repo, auditor := newTestService()
	ctx := context.Background()
	creator := uuid.New()

	p := validPatient()
	if err := svc.Create(ctx, p, creator); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored := repo.patients[p.ID]
	if stored == nil {
		t.Fatal("patient not stored")
	}
	if !stored.Active {
		t.Error("new patients should be active")
	}
	if stored.CreatedBy != creator {
		t.Errorf("created_by %s, want %s", stored.CreatedBy, creator)
	}
	if len(auditor.entries) != 1 || auditor.entries[0].Action != audit.ActionCreatePatient {
		t.Errorf("expected CREATE_PATIENT audit entry, got %+v", auditor.entries)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	creator := uuid.New()

	cases := []struct {
		name   string
		mutate func(*Patient)
	}{
		{"missing first name", func(p *Patient) { p.FirstName = "  " }},
		{"missing last name", func(p *Patient) { p.LastName = "" }},
		{"missing dob", func(p *Patient) { p.DateOfBirth = time.Time{} }},
		{"future dob", func(p *Patient) { p.DateOfBirth = time.Now().AddDate(1, 0, 0) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPatient()
			tc.mutate(p)
			if err := svc.Create(ctx, p, creator); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCreate_RequiresCreator(t *testing.T) {
	svc, _, _ := newTestService()
	if err := svc.Create(context.Background(), validPatient(), uuid.Nil); err == nil {
		t.Error("expected error for missing creator")
	}
}

func TestUpdate_RejectsDeactivated(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	creator := uuid.New()

	p := validPatient()
	if err := svc.Create(ctx, p, creator); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Deactivate(ctx, p.ID, creator); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p.Phone = strPtr("555-0100")
	if err := svc.Update(ctx, p, creator); err == nil {
		t.Error("expected error updating deactivated patient")
	}
}

func TestDeactivate_ExcludesFromList(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	creator := uuid.New()

	p := validPatient()
	if err := svc.Create(ctx, p, creator); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Deactivate(ctx, p.ID, creator); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, total, err := svc.List(ctx, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Errorf("deactivated patient still listed: %d items", total)
	}

	// Direct lookup still works for history.
	if _, err := svc.Get(ctx, p.ID); err != nil {
		t.Errorf("deactivated patient should remain fetchable: %v", err)
	}
}

func TestSearch_EmptyQueryFallsBackToList(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	creator := uuid.New()

	if err := svc.Create(ctx, validPatient(), creator); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, total, err := svc.Search(ctx, "   ", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("expected 1 patient, got %d", total)
	}
}

func TestSearch_MatchesName(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	creator := uuid.New()

	if err := svc.Create(ctx, validPatient(), creator); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other := &Patient{FirstName: "Ana", LastName: "Lopez",
		DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := svc.Create(ctx, other, creator); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, total, err := svc.Search(ctx, "santos", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || items[0].LastName != "Santos" {
		t.Errorf("unexpected search result: total=%d", total)
	}
}

func TestView_RecordsAccess(t *testing.T) {
	svc, _, auditor := newTestService()
	ctx := context.Background()
	creator := uuid.New()

	p := validPatient()
	if err := svc.Create(ctx, p, creator); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	viewer := uuid.New()
	got, err := svc.View(ctx, p.ID, viewer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("View returned wrong patient: %s", got.ID)
	}

	last := auditor.entries[len(auditor.entries)-1]
	if last.Action != audit.ActionViewPatient {
		t.Errorf("expected VIEW_PATIENT audit, got %s", last.Action)
	}
	if last.UserID == nil || *last.UserID != viewer {
		t.Error("view audit entry missing viewer")
	}
}
