package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/thenoetrevino/handla/internal/board"
	"github.com/thenoetrevino/handla/internal/models"
	"golang.org/x/sync/errgroup"
)

// State is the phase of the driver's sync cycle.
type State int

const (
	// StateIdle means the store holds what the board shows, as far as known.
	StateIdle State = iota
	// StateApplying means a local change is waiting to be persisted.
	StateApplying
	// StatePersisting means a diff is being written.
	StatePersisting
	// StateReconciling means a write failed and a refetch will replace the board.
	StateReconciling
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateApplying:
		return "applying"
	case StatePersisting:
		return "persisting"
	case StateReconciling:
		return "reconciling"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	defaultOpTimeout   = 10 * time.Second
	defaultErrorBuffer = 16
)

// Option configures a Driver.
type Option func(*Driver)

// WithOpTimeout bounds every background store call.
func WithOpTimeout(d time.Duration) Option {
	return func(dr *Driver) {
		if d > 0 {
			dr.opTimeout = d
		}
	}
}

type task struct {
	run  func(ctx context.Context) error
	done chan error
}

type listener struct {
	id int
	fn func(board.Board)
}

// Driver owns the board of one list. Apply changes the board at once and
// persists in the background on a single worker goroutine. Remote change
// notifications and failed writes lead to a full refetch.
type Driver struct {
	store     Store
	feed      ChangeFeed
	listID    string
	requested board.StoreKey
	opTimeout time.Duration

	mu           sync.Mutex
	board        board.Board
	key          board.StoreKey
	state        State
	known        map[string]struct{} // item ids the store is believed to hold
	version      uint64
	dirty        bool
	refetch      bool
	tasks        []task
	listeners    []listener
	nextListener int
	lastErr      error
	busy         bool
	idle         chan struct{}
	opened       bool
	closed       bool
	unsubscribe  func()

	wake   chan struct{}
	errs   chan error
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewDriver creates a driver for listID. key is the store used when the
// list has to be created. feed may be nil.
func NewDriver(store Store, feed ChangeFeed, listID string, key board.StoreKey, opts ...Option) *Driver {
	ctx, cancel := context.WithCancel(context.Background())
	idle := make(chan struct{})
	close(idle)

	d := &Driver{
		store:     store,
		feed:      feed,
		listID:    listID,
		requested: board.CoerceStoreKey(string(key)),
		opTimeout: defaultOpTimeout,
		known:     make(map[string]struct{}),
		idle:      idle,
		wake:      make(chan struct{}, 1),
		errs:      make(chan error, defaultErrorBuffer),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open initializes the list, loads it and starts listening for remote changes.
func (d *Driver) Open(ctx context.Context) error {
	d.mu.Lock()
	switch {
	case d.closed:
		d.mu.Unlock()
		return ErrClosed
	case d.opened:
		d.mu.Unlock()
		return ErrAlreadyOpen
	}
	d.mu.Unlock()

	key, err := EnsureList(ctx, d.store, d.listID, d.requested)
	if err != nil {
		return err
	}
	b, known, err := d.fetch(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInitialization, err)
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.board = b
	d.known = known
	d.key = key
	d.opened = true
	listeners := slices.Clone(d.listeners)
	d.mu.Unlock()

	go d.run()

	// a feed may block while subscribing, keep the lock free meanwhile
	if d.feed != nil {
		unsubscribe := d.feed.Subscribe(d.listID, d.requestRefetch)
		d.mu.Lock()
		if d.closed {
			d.mu.Unlock()
			unsubscribe()
		} else {
			d.unsubscribe = unsubscribe
			d.mu.Unlock()
		}
	}

	slog.Debug("list opened", "list_id", d.listID, "store", key, "items", len(b.Items))
	notify(listeners, b)
	return nil
}

// ListID returns the id of the driven list.
func (d *Driver) ListID() string {
	return d.listID
}

// Board returns a copy of the current board.
func (d *Driver) Board() board.Board {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.board.Clone()
}

// StoreKey returns the store template the list follows.
func (d *Driver) StoreKey() board.StoreKey {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.key
}

// State returns the current phase of the sync cycle.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Errors delivers background persist and refetch failures. The channel is
// closed by Close.
func (d *Driver) Errors() <-chan error {
	return d.errs
}

// OnChange registers fn to be called with every new board, whether from a
// local Apply or a refetch. fn runs on the goroutine that caused the change
// and must not modify the board or call back into the driver's blocking
// methods.
func (d *Driver) OnChange(fn func(board.Board)) (remove func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextListener++
	id := d.nextListener
	d.listeners = append(d.listeners, listener{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			d.listeners = slices.DeleteFunc(d.listeners, func(l listener) bool { return l.id == id })
		})
	}
}

// Apply runs op against the board and makes the result current
// immediately. Persisting happens in the background. A result that breaks
// the board invariants is discarded. Apply does nothing before Open or
// after Close.
func (d *Driver) Apply(op func(board.Board) board.Board) board.Board {
	d.mu.Lock()
	if !d.opened || d.closed {
		b := d.board
		d.mu.Unlock()
		return b
	}

	next := op(d.board.Clone())
	if err := board.Validate(next); err != nil {
		slog.Warn("discarding invalid board change", "list_id", d.listID, "error", err)
		b := d.board
		d.mu.Unlock()
		return b
	}

	d.board = next
	d.version++
	d.dirty = true
	if d.state == StateIdle {
		d.state = StateApplying
	}
	d.scheduleLocked()
	listeners := slices.Clone(d.listeners)
	d.mu.Unlock()

	notify(listeners, next)
	return next
}

// Refetch replaces the board with the stored list and waits for it.
func (d *Driver) Refetch(ctx context.Context) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	d.requestRefetch()
	return d.Flush(ctx)
}

// Flush waits until every pending write and refetch has finished and
// returns the first background error since the previous Flush.
func (d *Driver) Flush(ctx context.Context) error {
	d.mu.Lock()
	idle := d.idle
	d.mu.Unlock()

	select {
	case <-idle:
	case <-ctx.Done():
		return ctx.Err()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.lastErr
	d.lastErr = nil
	return err
}

// SwitchStore moves the list to another store template. Sections that are
// not part of the new template are removed after their items have been
// moved to the fallback section; no item is lost.
func (d *Driver) SwitchStore(ctx context.Context, key board.StoreKey) error {
	key = board.CoerceStoreKey(string(key))
	return d.runTask(ctx, func(ctx context.Context) error {
		d.mu.Lock()
		cur := d.board
		version := d.version
		known := slices.Collect(maps.Keys(d.known))
		d.mu.Unlock()

		next := board.ApplyTemplate(cur, key)

		if err := d.store.SetListStore(ctx, d.listID, string(key)); err != nil {
			return fmt.Errorf("setting store: %w", err)
		}
		if err := d.store.UpsertSections(ctx, d.listID, SectionRecords(d.listID, next)); err != nil {
			return fmt.Errorf("writing sections: %w", err)
		}
		if err := d.persist(ctx, known, next); err != nil {
			return err
		}
		var stale []string
		for _, id := range cur.ColumnOrder {
			if !next.HasSection(id) {
				stale = append(stale, id)
			}
		}
		if err := d.store.DeleteSections(ctx, d.listID, stale); err != nil {
			return fmt.Errorf("removing sections: %w", err)
		}

		d.mu.Lock()
		d.key = key
		d.known = itemIDSet(next)
		if d.version != version {
			// local edits landed meanwhile; move them onto the new layout too
			next = board.ApplyTemplate(d.board, key)
			d.dirty = true
		}
		d.board = next
		listeners := slices.Clone(d.listeners)
		d.mu.Unlock()

		slog.Info("switched store", "list_id", d.listID, "store", key, "removed_sections", len(stale))
		notify(listeners, next)
		return nil
	})
}

// Reset deletes every item of the list and reloads it. Sections are kept.
// Items added while the delete runs survive it.
func (d *Driver) Reset(ctx context.Context) error {
	err := d.runTask(ctx, func(ctx context.Context) error {
		d.mu.Lock()
		cleared := slices.Collect(maps.Keys(d.board.Items))
		d.mu.Unlock()

		if err := d.store.DeleteAllItems(ctx, d.listID); err != nil {
			return fmt.Errorf("deleting items: %w", err)
		}

		d.mu.Lock()
		next := d.board
		for _, id := range cleared {
			next = board.DeleteItem(next, id)
		}
		d.board = next
		// the store holds nothing now; later edits are written from scratch
		d.known = make(map[string]struct{})
		d.dirty = d.dirty || len(next.Items) > 0
		d.refetch = true
		listeners := slices.Clone(d.listeners)
		d.mu.Unlock()

		notify(listeners, next)
		return nil
	})
	if err != nil {
		return err
	}
	return d.Flush(ctx)
}

// Close unsubscribes from the change feed and stops the worker. Pending
// writes that have not started are abandoned.
func (d *Driver) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	started := d.opened
	unsubscribe := d.unsubscribe
	d.unsubscribe = nil
	d.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	d.cancel()
	if started {
		<-d.done
	}

	d.mu.Lock()
	for _, t := range d.tasks {
		t.done <- ErrClosed
	}
	d.tasks = nil
	d.dirty = false
	d.refetch = false
	d.setIdleLocked()
	d.mu.Unlock()

	close(d.errs)
	return nil
}

func (d *Driver) checkOpen() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case d.closed:
		return ErrClosed
	case !d.opened:
		return ErrNotOpen
	}
	return nil
}

// requestRefetch is the change feed callback. It never blocks.
func (d *Driver) requestRefetch() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || !d.opened {
		return
	}
	d.refetch = true
	d.scheduleLocked()
}

// runTask queues fn behind any pending write and waits for its result.
func (d *Driver) runTask(ctx context.Context, fn func(ctx context.Context) error) error {
	t := task{run: fn, done: make(chan error, 1)}

	d.mu.Lock()
	switch {
	case d.closed:
		d.mu.Unlock()
		return ErrClosed
	case !d.opened:
		d.mu.Unlock()
		return ErrNotOpen
	}
	d.tasks = append(d.tasks, t)
	d.scheduleLocked()
	d.mu.Unlock()

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Driver) scheduleLocked() {
	if !d.busy {
		d.busy = true
		d.idle = make(chan struct{})
	}
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *Driver) setIdleLocked() {
	if d.busy {
		d.busy = false
		close(d.idle)
	}
}

// reportLocked records a background failure for Flush and Errors.
func (d *Driver) reportLocked(err error) {
	if d.closed {
		return
	}
	if d.lastErr == nil {
		d.lastErr = err
	}
	select {
	case d.errs <- err:
	default:
		slog.Debug("error channel full, dropping error", "list_id", d.listID, "error", err)
	}
}

func (d *Driver) run() {
	defer close(d.done)
	for {
		select {
		case <-d.ctx.Done():
			return
		case <-d.wake:
		}
		for d.step() {
		}
	}
}

// step performs one unit of background work: a pending write first, then
// queued tasks, then a refetch. It returns false once there is nothing left.
func (d *Driver) step() bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false
	}

	switch {
	case d.dirty:
		d.dirty = false
		snapshot := d.board
		known := slices.Collect(maps.Keys(d.known))
		d.state = StatePersisting
		d.mu.Unlock()

		ctx, cancel := context.WithTimeout(d.ctx, d.opTimeout)
		err := d.persist(ctx, known, snapshot)
		cancel()

		d.mu.Lock()
		if err != nil {
			slog.Warn("persist failed, refetching", "list_id", d.listID, "error", err)
			d.state = StateReconciling
			d.refetch = true
			d.reportLocked(err)
		} else {
			d.known = itemIDSet(snapshot)
		}
		d.mu.Unlock()
		return true

	case len(d.tasks) > 0:
		t := d.tasks[0]
		d.tasks = d.tasks[1:]
		d.mu.Unlock()

		ctx, cancel := context.WithTimeout(d.ctx, d.opTimeout)
		err := t.run(ctx)
		cancel()
		if err != nil {
			d.mu.Lock()
			d.state = StateReconciling
			d.refetch = true
			d.mu.Unlock()
		}
		t.done <- err
		return true

	case d.refetch:
		d.refetch = false
		version := d.version
		d.mu.Unlock()

		ctx, cancel := context.WithTimeout(d.ctx, d.opTimeout)
		b, known, err := d.fetch(ctx)
		cancel()

		d.mu.Lock()
		switch {
		case err != nil:
			slog.Warn("refetch failed", "list_id", d.listID, "error", err)
			d.reportLocked(err)
			d.mu.Unlock()
		case d.version != version || d.dirty:
			// the fetch raced a local edit; write that first and fetch again
			d.refetch = true
			d.mu.Unlock()
		default:
			d.board = b
			d.known = known
			listeners := slices.Clone(d.listeners)
			d.mu.Unlock()
			notify(listeners, b)
		}
		return true

	default:
		d.state = StateIdle
		d.setIdleLocked()
		d.mu.Unlock()
		return false
	}
}

// persist writes the diff between known and desired.
func (d *Driver) persist(ctx context.Context, known []string, desired board.Board) error {
	plan := Plan(d.listID, known, desired)
	if err := d.store.DeleteItems(ctx, d.listID, plan.Deletes); err != nil {
		return fmt.Errorf("deleting items: %w", err)
	}
	if err := d.store.UpsertItems(ctx, d.listID, plan.Upserts); err != nil {
		return fmt.Errorf("upserting items: %w", err)
	}
	return nil
}

// fetch loads the whole list and the set of stored item ids.
func (d *Driver) fetch(ctx context.Context) (board.Board, map[string]struct{}, error) {
	var (
		sections []models.SectionRecord
		items    []models.ItemRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if sections, err = d.store.ListSections(gctx, d.listID); err != nil {
			return fmt.Errorf("listing sections: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if items, err = d.store.ListItems(gctx, d.listID); err != nil {
			return fmt.Errorf("listing items: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return board.Board{}, nil, err
	}

	known := make(map[string]struct{}, len(items))
	for _, it := range items {
		known[it.ID] = struct{}{}
	}
	return BuildBoard(sections, items, board.FallbackSectionID), known, nil
}

func notify(listeners []listener, b board.Board) {
	for _, l := range listeners {
		l.fn(b)
	}
}
