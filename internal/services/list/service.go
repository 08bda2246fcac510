// Package list implements the shopping list operations used by the CLI:
// creating lists, editing items and switching stores. Every operation
// opens a reconcile.Driver on the list, applies one board change and waits
// for it to be persisted.
package list

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thenoetrevino/handla/internal/board"
	"github.com/thenoetrevino/handla/internal/database"
	"github.com/thenoetrevino/handla/internal/ingredient"
	"github.com/thenoetrevino/handla/internal/models"
	"github.com/thenoetrevino/handla/internal/reconcile"
)

// minRefLength is the shortest item id prefix accepted as a reference.
const minRefLength = 4

const flushTimeout = 5 * time.Second

// Service defines all list-related business operations
type Service interface {
	// List lifecycle
	CreateList(ctx context.Context, req CreateListRequest) (*models.List, error)
	GetList(ctx context.Context, listID string) (*models.List, error)
	GetAllLists(ctx context.Context) ([]*models.List, error)
	Cleanup(ctx context.Context, olderThan time.Duration) ([]string, error)

	// Read operations
	Snapshot(ctx context.Context, listID string) (*Snapshot, error)
	Stats(ctx context.Context, listID string) (board.Stats, error)
	Watch(ctx context.Context, listID string, onChange func(*Snapshot)) error

	// Item operations
	AddItem(ctx context.Context, listID string, req AddItemRequest) (*AddItemResult, error)
	ToggleItem(ctx context.Context, listID, itemRef string) (board.Item, error)
	SetChecked(ctx context.Context, listID, itemRef string, checked bool) (board.Item, error)
	EditItem(ctx context.Context, listID, itemRef, text string) (board.Item, error)
	DeleteItem(ctx context.Context, listID, itemRef string) error
	MoveItem(ctx context.Context, listID string, req MoveItemRequest) error

	// Whole list operations
	ClearList(ctx context.Context, listID string) error
	SwitchStore(ctx context.Context, listID string, store board.StoreKey) error
}

// CreateListRequest encapsulates the data needed to create a list.
// An empty ID gets a generated one.
type CreateListRequest struct {
	ID    string
	Store board.StoreKey
}

// AddItemRequest encapsulates the data needed to add an item.
// An empty SectionID classifies the text into a section.
type AddItemRequest struct {
	SectionID      string
	Text           string
	AllowDuplicate bool
}

// AddItemResult tells where the item ended up.
type AddItemResult struct {
	ItemID     string `json:"item_id"`
	SectionID  string `json:"section_id"`
	Normalized string `json:"normalized,omitempty"`
}

// MoveItemRequest moves ItemRef to Index inside SectionID. An empty
// SectionID keeps the item in its current section. A non-empty OntoRef
// drops the item onto another item or a section instead, the way a drag
// and drop would.
type MoveItemRequest struct {
	ItemRef   string
	SectionID string
	Index     int
	OntoRef   string
}

// Snapshot is a read-only view of a list.
type Snapshot struct {
	List  *models.List   `json:"list"`
	Store board.StoreKey `json:"store"`
	Board board.Board    `json:"-"`
}

// Option configures the service.
type Option func(*service)

// WithClassifier replaces the default section classifier.
func WithClassifier(c *ingredient.Classifier) Option {
	return func(s *service) { s.classifier = c }
}

// WithDefaultStore sets the store used for new lists, willys by default.
func WithDefaultStore(key board.StoreKey) Option {
	return func(s *service) { s.defaultStore = board.CoerceStoreKey(string(key)) }
}

// service implements Service interface
type service struct {
	repo         database.DataStore
	feed         reconcile.ChangeFeed
	classifier   *ingredient.Classifier
	defaultStore board.StoreKey
}

// NewService creates a new list service. feed may be nil.
func NewService(repo database.DataStore, feed reconcile.ChangeFeed, opts ...Option) Service {
	s := &service{
		repo:         repo,
		feed:         feed,
		classifier:   ingredient.Default(),
		defaultStore: board.DefaultStore,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateList creates the list with the sections of the requested store.
// Creating a list that already exists returns it unchanged.
func (s *service) CreateList(ctx context.Context, req CreateListRequest) (*models.List, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}
	key := s.defaultStore
	if req.Store != "" {
		if !board.IsValidStoreKey(string(req.Store)) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidStore, req.Store)
		}
		key = req.Store
	}

	if _, err := reconcile.EnsureList(ctx, s.repo, id, key); err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}
	return s.GetList(ctx, id)
}

// GetList loads one list.
func (s *service) GetList(ctx context.Context, listID string) (*models.List, error) {
	listID = strings.TrimSpace(listID)
	if listID == "" {
		return nil, ErrInvalidListID
	}
	l, err := s.repo.GetList(ctx, listID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load list: %w", err)
	}
	return l, nil
}

// GetAllLists returns every list, most recently changed first.
func (s *service) GetAllLists(ctx context.Context) ([]*models.List, error) {
	lists, err := s.repo.GetAllLists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lists: %w", err)
	}
	return lists, nil
}

// Cleanup deletes lists untouched for longer than olderThan.
func (s *service) Cleanup(ctx context.Context, olderThan time.Duration) ([]string, error) {
	if olderThan <= 0 {
		return nil, fmt.Errorf("cleanup age must be positive, got %s", olderThan)
	}
	ids, err := s.repo.DeleteListsOlderThan(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return nil, fmt.Errorf("failed to clean up lists: %w", err)
	}
	if len(ids) > 0 {
		slog.Info("removed old lists", "count", len(ids), "older_than", olderThan)
	}
	return ids, nil
}

// Snapshot returns the list together with its current board.
func (s *service) Snapshot(ctx context.Context, listID string) (*Snapshot, error) {
	var snap *Snapshot
	err := s.withDriver(ctx, listID, func(d *reconcile.Driver) error {
		l, err := s.repo.GetList(ctx, d.ListID())
		if err != nil {
			return fmt.Errorf("failed to load list: %w", err)
		}
		snap = &Snapshot{List: l, Store: d.StoreKey(), Board: d.Board()}
		return nil
	})
	return snap, err
}

// Watch calls onChange with the list as it is now and again after every
// change, local or remote, until ctx is done.
func (s *service) Watch(ctx context.Context, listID string, onChange func(*Snapshot)) error {
	return s.withDriver(ctx, listID, func(d *reconcile.Driver) error {
		l, err := s.repo.GetList(ctx, d.ListID())
		if err != nil {
			return fmt.Errorf("failed to load list: %w", err)
		}

		changes := make(chan board.Board, 16)
		remove := d.OnChange(func(b board.Board) {
			select {
			case changes <- b:
			default:
				slog.Debug("watch is behind, dropping update", "list_id", l.ID)
			}
		})
		defer remove()

		onChange(&Snapshot{List: l, Store: d.StoreKey(), Board: d.Board()})
		for {
			select {
			case <-ctx.Done():
				return nil
			case b := <-changes:
				onChange(&Snapshot{List: l, Store: d.StoreKey(), Board: b})
			}
		}
	})
}

// Stats counts the items of the list.
func (s *service) Stats(ctx context.Context, listID string) (board.Stats, error) {
	var stats board.Stats
	err := s.withDriver(ctx, listID, func(d *reconcile.Driver) error {
		stats = board.ComputeStats(d.Board())
		return nil
	})
	return stats, err
}

// AddItem puts a new item at the top of its section.
func (s *service) AddItem(ctx context.Context, listID string, req AddItemRequest) (*AddItemResult, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyText
	}

	var res *AddItemResult
	err := s.withDriver(ctx, listID, func(d *reconcile.Driver) error {
		cur := d.Board()

		if !req.AllowDuplicate {
			if existing, dup := board.FindDuplicate(cur, text); dup {
				return &DuplicateError{ItemID: existing, Text: cur.Items[existing].Text}
			}
		}

		sectionID := req.SectionID
		var normalized string
		if sectionID == "" {
			cls := s.classifier.Classify(text, d.StoreKey(), cur)
			sectionID, normalized = cls.SectionID, cls.Normalized
		} else if !cur.HasSection(sectionID) {
			return fmt.Errorf("%w: %s", ErrSectionNotFound, sectionID)
		}

		var id string
		d.Apply(func(b board.Board) board.Board {
			next, added := board.AddItem(b, sectionID, text)
			id = added
			return next
		})
		if id == "" {
			return ErrNotApplied
		}
		res = &AddItemResult{ItemID: id, SectionID: sectionID, Normalized: normalized}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("item added", "list_id", listID, "item_id", res.ItemID, "section", res.SectionID)
	return res, nil
}

// ToggleItem flips the checked state of an item.
func (s *service) ToggleItem(ctx context.Context, listID, itemRef string) (board.Item, error) {
	var item board.Item
	err := s.withDriver(ctx, listID, func(d *reconcile.Driver) error {
		id, err := ResolveItem(d.Board(), itemRef)
		if err != nil {
			return err
		}
		next := d.Apply(func(b board.Board) board.Board {
			return board.ToggleItem(b, id)
		})
		item = next.Items[id]
		return nil
	})
	return item, err
}

// SetChecked checks or unchecks an item. Setting the state it already has
// changes nothing.
func (s *service) SetChecked(ctx context.Context, listID, itemRef string, checked bool) (board.Item, error) {
	var item board.Item
	err := s.withDriver(ctx, listID, func(d *reconcile.Driver) error {
		id, err := ResolveItem(d.Board(), itemRef)
		if err != nil {
			return err
		}
		next := d.Apply(func(b board.Board) board.Board {
			return board.SetChecked(b, id, checked)
		})
		item = next.Items[id]
		return nil
	})
	return item, err
}

// EditItem replaces the text of an item.
func (s *service) EditItem(ctx context.Context, listID, itemRef, text string) (board.Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return board.Item{}, ErrEmptyText
	}

	var item board.Item
	err := s.withDriver(ctx, listID, func(d *reconcile.Driver) error {
		id, err := ResolveItem(d.Board(), itemRef)
		if err != nil {
			return err
		}
		next := d.Apply(func(b board.Board) board.Board {
			return board.EditItemText(b, id, text)
		})
		item = next.Items[id]
		return nil
	})
	return item, err
}

// DeleteItem removes an item.
func (s *service) DeleteItem(ctx context.Context, listID, itemRef string) error {
	return s.withDriver(ctx, listID, func(d *reconcile.Driver) error {
		id, err := ResolveItem(d.Board(), itemRef)
		if err != nil {
			return err
		}
		d.Apply(func(b board.Board) board.Board {
			return board.DeleteItem(b, id)
		})
		return nil
	})
}

// MoveItem moves an item to a position in a section. The index is clamped.
func (s *service) MoveItem(ctx context.Context, listID string, req MoveItemRequest) error {
	return s.withDriver(ctx, listID, func(d *reconcile.Driver) error {
		cur := d.Board()
		id, err := ResolveItem(cur, req.ItemRef)
		if err != nil {
			return err
		}
		if strings.TrimSpace(req.OntoRef) != "" {
			return dropOnto(d, cur, id, strings.TrimSpace(req.OntoRef))
		}

		target := req.SectionID
		if target == "" {
			target, _ = board.FindSection(cur, id)
		}
		if !cur.HasSection(target) {
			return fmt.Errorf("%w: %s", ErrSectionNotFound, target)
		}
		d.Apply(func(b board.Board) board.Board {
			return board.MoveItem(b, id, target, req.Index)
		})
		return nil
	})
}

// dropOnto runs a complete drag of id onto a section or another item:
// hovering moves it across sections, dropping reorders it in place.
func dropOnto(d *reconcile.Driver, cur board.Board, id, onto string) error {
	over := onto
	if !cur.HasSection(onto) {
		var err error
		if over, err = ResolveItem(cur, onto); err != nil {
			return err
		}
	}
	if over == id {
		return nil
	}
	d.Apply(func(b board.Board) board.Board {
		return board.Drop(b, id, over)
	})
	return nil
}

// ClearList removes every item and keeps the sections.
func (s *service) ClearList(ctx context.Context, listID string) error {
	return s.withDriver(ctx, listID, func(d *reconcile.Driver) error {
		if err := d.Reset(ctx); err != nil {
			return fmt.Errorf("failed to clear list: %w", err)
		}
		return nil
	})
}

// SwitchStore moves the list onto another store's sections.
func (s *service) SwitchStore(ctx context.Context, listID string, store board.StoreKey) error {
	if !board.IsValidStoreKey(string(store)) {
		return fmt.Errorf("%w: %s", ErrInvalidStore, store)
	}
	return s.withDriver(ctx, listID, func(d *reconcile.Driver) error {
		if d.StoreKey() == store {
			return nil
		}
		if err := d.SwitchStore(ctx, store); err != nil {
			return fmt.Errorf("failed to switch store: %w", err)
		}
		return nil
	})
}

// withDriver opens the existing list, runs fn and waits until every
// change fn made is stored.
func (s *service) withDriver(ctx context.Context, listID string, fn func(d *reconcile.Driver) error) error {
	l, err := s.GetList(ctx, listID)
	if err != nil {
		return err
	}

	d := reconcile.NewDriver(s.repo, s.feed, l.ID, board.StoreKey(l.Store))
	if err := d.Open(ctx); err != nil {
		return fmt.Errorf("failed to open list: %w", err)
	}

	// background failures are recovered by a refetch, only log them
	logged := make(chan struct{})
	go func() {
		defer close(logged)
		for err := range d.Errors() {
			slog.Warn("list sync failed", "list_id", l.ID, "error", err)
		}
	}()
	defer func() {
		if closeErr := d.Close(); closeErr != nil {
			slog.Warn("closing list driver", "list_id", l.ID, "error", closeErr)
		}
		<-logged
	}()

	if err := fn(d); err != nil {
		return err
	}
	// a finished watch still saves what it applied
	flushCtx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		flushCtx, cancel = context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
		defer cancel()
	}
	if err := d.Flush(flushCtx); err != nil {
		return fmt.Errorf("failed to save list: %w", err)
	}
	return nil
}

// ResolveItem maps an item id, or a unique prefix of one, to the full id.
func ResolveItem(b board.Board, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrInvalidItemRef
	}
	if _, ok := b.Items[ref]; ok {
		return ref, nil
	}
	if len(ref) < minRefLength {
		return "", fmt.Errorf("%w: %s", ErrItemNotFound, ref)
	}

	var match string
	for id := range b.Items {
		if !strings.HasPrefix(id, ref) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("%w: %s", ErrAmbiguousItem, ref)
		}
		match = id
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", ErrItemNotFound, ref)
	}
	return match, nil
}
