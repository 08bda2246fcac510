package reconcile

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/thenoetrevino/handla/internal/models"
)

// memStore is an in-memory Store with failure injection.
type memStore struct {
	mu       sync.Mutex
	lists    map[string]models.List
	sections map[string]map[string]models.SectionRecord
	items    map[string]models.ItemRecord

	failUpsert error
	failList   error
	failCreate error
	failSet    error
	// raceCreate makes GetList miss once and CreateList report a conflict,
	// as if another client created the list in between.
	raceCreate bool
	// beforeDeleteAll runs at the start of DeleteAllItems, outside the lock.
	beforeDeleteAll func()

	deleteCalls [][]string
}

func newMemStore() *memStore {
	return &memStore{
		lists:    make(map[string]models.List),
		sections: make(map[string]map[string]models.SectionRecord),
		items:    make(map[string]models.ItemRecord),
	}
}

func (s *memStore) set(f func(s *memStore)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(s)
}

func (s *memStore) GetList(_ context.Context, id string) (*models.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.raceCreate {
		return nil, fmt.Errorf("list %s: %w", id, models.ErrNotFound)
	}
	l, ok := s.lists[id]
	if !ok {
		return nil, fmt.Errorf("list %s: %w", id, models.ErrNotFound)
	}
	return &l, nil
}

func (s *memStore) CreateList(_ context.Context, id, store string, sections []models.SectionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.raceCreate {
		s.raceCreate = false
		return fmt.Errorf("list %s: %w", id, models.ErrConflict)
	}
	if s.failCreate != nil {
		return s.failCreate
	}
	if _, ok := s.lists[id]; ok {
		return fmt.Errorf("list %s: %w", id, models.ErrConflict)
	}
	s.lists[id] = models.List{ID: id, Store: store}
	s.sections[id] = make(map[string]models.SectionRecord)
	for _, sec := range sections {
		sec.ListID = id
		s.sections[id][sec.ID] = sec
	}
	return nil
}

func (s *memStore) SetListStore(_ context.Context, id, store string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet != nil {
		return s.failSet
	}
	l, ok := s.lists[id]
	if !ok {
		return models.ErrNotFound
	}
	l.Store = store
	s.lists[id] = l
	return nil
}

func (s *memStore) ListSections(_ context.Context, listID string) ([]models.SectionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failList != nil {
		return nil, s.failList
	}
	var out []models.SectionRecord
	for _, sec := range s.sections[listID] {
		out = append(out, sec)
	}
	slices.SortFunc(out, func(a, b models.SectionRecord) int {
		return cmp.Or(cmp.Compare(a.SortOrder, b.SortOrder), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (s *memStore) UpsertSections(_ context.Context, listID string, sections []models.SectionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sections[listID] == nil {
		s.sections[listID] = make(map[string]models.SectionRecord)
	}
	for _, sec := range sections {
		sec.ListID = listID
		s.sections[listID][sec.ID] = sec
	}
	return nil
}

func (s *memStore) DeleteSections(_ context.Context, listID string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.sections[listID], id)
	}
	return nil
}

func (s *memStore) ListItems(_ context.Context, listID string) ([]models.ItemRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failList != nil {
		return nil, s.failList
	}
	var out []models.ItemRecord
	for _, it := range s.items {
		if it.ListID == listID {
			out = append(out, it)
		}
	}
	slices.SortFunc(out, func(a, b models.ItemRecord) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *memStore) UpsertItems(_ context.Context, listID string, items []models.ItemRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpsert != nil {
		return s.failUpsert
	}
	for _, it := range items {
		it.ListID = listID
		s.items[it.ID] = it
	}
	return nil
}

func (s *memStore) DeleteItems(_ context.Context, listID string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(ids) > 0 {
		s.deleteCalls = append(s.deleteCalls, slices.Clone(ids))
	}
	for _, id := range ids {
		if it, ok := s.items[id]; ok && it.ListID == listID {
			delete(s.items, id)
		}
	}
	return nil
}

func (s *memStore) DeleteAllItems(_ context.Context, listID string) error {
	s.mu.Lock()
	hook := s.beforeDeleteAll
	s.mu.Unlock()
	if hook != nil {
		hook()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, it := range s.items {
		if it.ListID == listID {
			delete(s.items, id)
		}
	}
	return nil
}

func (s *memStore) itemTexts(listID string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string)
	for id, it := range s.items {
		if it.ListID == listID {
			out[id] = it.Text
		}
	}
	return out
}

func (s *memStore) item(id string) (models.ItemRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	return it, ok
}

func (s *memStore) sectionIDs(listID string) []string {
	secs, _ := s.ListSections(context.Background(), listID)
	out := make([]string, 0, len(secs))
	for _, sec := range secs {
		out = append(out, sec.ID)
	}
	return out
}

var _ Store = (*memStore)(nil)
