package audit

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockRepo struct {
	entries   map[uuid.UUID]*Entry
	failWrite bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{entries: make(map[uuid.UUID]*Entry)}
}

func (m *mockRepo) Create(ctx context.Context, e *Entry) error {
	if m.failWrite {
		return errors.New("write failed")
	}
	e.ID = uuid.New()
	m.entries[e.ID] = e
	return nil
}

func (m *mockRepo) all() []*Entry {
	var items []*Entry
	for _, e := range m.entries {
		items = append(items, e)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items
}

func (m *mockRepo) List(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	items := m.all()
	return items, len(items), nil
}

func (m *mockRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	var items []*Entry
	for _, e := range m.all() {
		if e.UserID != nil && *e.UserID == userID {
			items = append(items, e)
		}
	}
	return items, len(items), nil
}

func (m *mockRepo) ListByEntity(ctx context.Context, entity string, entityID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	var items []*Entry
	for _, e := range m.all() {
		if e.Entity != nil && *e.Entity == entity && e.EntityID != nil && *e.EntityID == entityID {
			items = append(items, e)
		}
	}
	return items, len(items), nil
}

func TestRecord_PersistsEntry(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, zerolog.Nop())

	uid := uuid.New()
	svc.Record(context.Background(), &Entry{UserID: &uid, Action: ActionCreatePatient})

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
}

func TestRecord_DropsEntryWithoutAction(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, zerolog.Nop())

	svc.Record(context.Background(), &Entry{})

	if len(repo.entries) != 0 {
		t.Errorf("expected entry without action to be dropped, got %d", len(repo.entries))
	}
}

func TestRecord_SwallowsRepoError(t *testing.T) {
	repo := newMockRepo()
	repo.failWrite = true
	svc := NewService(repo, zerolog.Nop())

	// Must not panic or surface the error.
	svc.Record(context.Background(), &Entry{Action: ActionLoginFailed})
}

func TestListByUser_FiltersEntries(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, zerolog.Nop())

	alice := uuid.New()
	bob := uuid.New()
	svc.Record(context.Background(), &Entry{UserID: &alice, Action: ActionLoginSuccess})
	svc.Record(context.Background(), &Entry{UserID: &alice, Action: ActionCreatePatient})
	svc.Record(context.Background(), &Entry{UserID: &bob, Action: ActionLoginSuccess})

	items, total, err := svc.ListByUser(context.Background(), alice, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("expected 2 entries for alice, got %d", total)
	}
}
