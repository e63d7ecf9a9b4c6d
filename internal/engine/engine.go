// Package engine reconciles rapid local quantity edits with the remote
// record store: optimistic local mutation, debounced persistence, and
// reload arbitration so a refresh never clobbers an input the user is
// still typing in.
package engine

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yogu/stockdash/internal/models"
)

// DefaultDebounce is how long a quantity input must stay quiet before
// its value is persisted.
const DefaultDebounce = 600 * time.Millisecond

// ValidationError reports a non-numeric quantity at commit time. The
// write is suppressed; the user is notified synchronously.
type ValidationError struct {
	Input string
}

func (e *ValidationError) Error() string {
	return "enter a numeric value"
}

// Updater is the slice of the gateway the engine writes through.
type Updater interface {
	UpdateStock(ctx context.Context, id int, value float64) error
}

// Inventory is the slice of the store the engine mutates and reloads.
type Inventory interface {
	Reload(ctx context.Context) error
	ApplyOptimisticUpdate(id int, value float64)
}

// Display lets the engine read and normalize the rendered quantity for
// an item without owning the UI.
type Display interface {
	QuantityValue(id int) (string, bool)
	SetQuantityValue(id int, formatted string)
}

// FocusChecker reports whether a quantity input currently holds focus.
// While one does, reloads are deferred rather than executed.
type FocusChecker interface {
	QuantityInputFocused() bool
}

// Notifier surfaces recoverable errors to the user. Blocking alert in
// the UI; a log line in headless use.
type Notifier interface {
	Notify(message string)
}

type noopNotifier struct{}

func (noopNotifier) Notify(string) {}

// Config wires the engine's collaborators.
type Config struct {
	Display  Display
	Focus    FocusChecker
	Notifier Notifier
	Debounce time.Duration // defaults to DefaultDebounce
}

// Engine is the edit synchronization engine. One instance per session.
type Engine struct {
	gw       Updater
	inv      Inventory
	display  Display
	focus    FocusChecker
	notifier Notifier
	debounce time.Duration
	sched    *Scheduler[int]

	mu            sync.Mutex
	reloadPending bool // single coalesced deferral slot
}

// New creates an engine around the gateway and inventory store.
func New(gw Updater, inv Inventory, cfg Config) *Engine {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Notifier == nil {
		cfg.Notifier = noopNotifier{}
	}
	return &Engine{
		gw:       gw,
		inv:      inv,
		display:  cfg.Display,
		focus:    cfg.Focus,
		notifier: cfg.Notifier,
		debounce: cfg.Debounce,
		sched:    NewScheduler[int](),
	}
}

// Stop cancels all pending debounce timers. Scheduled persists that
// have not fired are dropped outright.
func (e *Engine) Stop() {
	e.sched.Stop()
}

// parseQty parses a user-entered quantity. Bare signs and dots, NaN
// and infinities are all rejected as in-progress or junk input.
func parseQty(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// persist performs the write sequence: clamp and round, send upstream,
// then patch the local snapshot so the sent value is visible even if
// the follow-up reload is deferred.
func (e *Engine) persist(ctx context.Context, id int, value float64) (float64, error) {
	v := models.ClampQty(value)
	if err := e.gw.UpdateStock(ctx, id, v); err != nil {
		return v, err
	}
	e.inv.ApplyOptimisticUpdate(id, v)
	return v, nil
}

// AdjustByStep applies a stepper click: read the displayed value, step
// it (never below zero), write the display immediately, persist, then
// attempt a reload.
func (e *Engine) AdjustByStep(ctx context.Context, id int, delta float64) error {
	var cur float64
	if e.display != nil {
		if raw, ok := e.display.QuantityValue(id); ok {
			cur, _ = parseQty(raw)
		}
	}
	next := models.ClampQty(cur + delta)
	if e.display != nil {
		e.display.SetQuantityValue(id, models.Fmt2(next))
	}

	if _, err := e.persist(ctx, id, next); err != nil {
		e.notifier.Notify(err.Error())
		return err
	}
	e.RequestReload(ctx)
	return nil
}

// OnQuantityInput handles a keystroke in a quantity field. Unparsable
// values are in-progress edits and are ignored. Parsable values
// (re)start the debounce timer for the item; an older pending timer for
// the same item never fires.
func (e *Engine) OnQuantityInput(id int, raw string) {
	v, ok := parseQty(raw)
	if !ok {
		return
	}
	e.sched.Schedule(id, e.debounce, func() {
		// The triggering event is long gone when the timer fires.
		ctx := context.Background()
		sent, err := e.persist(ctx, id, v)
		if err != nil {
			slog.Warn("debounced persist failed", "id", id, "err", err)
			e.notifier.Notify(err.Error())
			return
		}
		if e.display != nil {
			e.display.SetQuantityValue(id, models.Fmt2(sent))
		}
		e.RequestReload(ctx)
	})
}

// OnQuantityCommit handles an explicit commit (blur, enter). A commit
// supersedes any pending debounce for the item: exactly one write goes
// out, carrying the committed value.
func (e *Engine) OnQuantityCommit(ctx context.Context, id int, raw string) error {
	v, ok := parseQty(raw)
	if !ok {
		verr := &ValidationError{Input: raw}
		e.notifier.Notify(verr.Error())
		return verr
	}
	e.sched.Cancel(id)

	sent, err := e.persist(ctx, id, v)
	if err != nil {
		e.notifier.Notify(err.Error())
		return err
	}
	if e.display != nil {
		e.display.SetQuantityValue(id, models.Fmt2(sent))
	}
	e.RequestReload(ctx)
	return nil
}

// RequestReload reloads the snapshot unless a quantity input holds
// focus, in which case the reload is deferred. Later deferrals coalesce
// into the same single pending slot.
func (e *Engine) RequestReload(ctx context.Context) {
	if e.focus != nil && e.focus.QuantityInputFocused() {
		e.mu.Lock()
		e.reloadPending = true
		e.mu.Unlock()
		return
	}
	if err := e.inv.Reload(ctx); err != nil {
		e.notifier.Notify(err.Error())
	}
}

// OnFocusChange runs on every focus transition. When focus has left the
// quantity inputs and a reload is owed, it executes exactly once.
func (e *Engine) OnFocusChange(ctx context.Context) {
	if e.focus != nil && e.focus.QuantityInputFocused() {
		return
	}
	e.mu.Lock()
	pending := e.reloadPending
	e.reloadPending = false
	e.mu.Unlock()
	if !pending {
		return
	}
	if err := e.inv.Reload(ctx); err != nil {
		e.notifier.Notify(err.Error())
	}
}

// ReloadPending reports whether a deferred reload is owed.
func (e *Engine) ReloadPending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reloadPending
}
