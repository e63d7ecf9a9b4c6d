package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yogu/stockdash/internal/gateway"
)

const testDebounce = 25 * time.Millisecond

type write struct {
	id    int
	value float64
}

// fakeUpdater records every UpdateStock call.
type fakeUpdater struct {
	mu     sync.Mutex
	writes []write
	err    error
}

func (f *fakeUpdater) UpdateStock(ctx context.Context, id int, value float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.writes = append(f.writes, write{id, value})
	return nil
}

func (f *fakeUpdater) Writes() []write {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]write(nil), f.writes...)
}

// fakeInventory records reloads and optimistic patches.
type fakeInventory struct {
	mu        sync.Mutex
	reloads   int
	patches   []write
	reloadErr error
}

func (f *fakeInventory) Reload(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reloadErr != nil {
		return f.reloadErr
	}
	f.reloads++
	return nil
}

func (f *fakeInventory) ApplyOptimisticUpdate(id int, value float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, write{id, value})
}

func (f *fakeInventory) Reloads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reloads
}

func (f *fakeInventory) Patches() []write {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]write(nil), f.patches...)
}

// fakeDisplay is an id -> rendered value map.
type fakeDisplay struct {
	mu     sync.Mutex
	values map[int]string
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{values: make(map[int]string)}
}

func (f *fakeDisplay) QuantityValue(id int) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[id]
	return v, ok
}

func (f *fakeDisplay) SetQuantityValue(id int, formatted string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[id] = formatted
}

// fakeFocus toggles whether a quantity input holds focus.
type fakeFocus struct {
	mu      sync.Mutex
	focused bool
}

func (f *fakeFocus) QuantityInputFocused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.focused
}

func (f *fakeFocus) set(v bool) {
	f.mu.Lock()
	f.focused = v
	f.mu.Unlock()
}

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (f *fakeNotifier) Notify(msg string) {
	f.mu.Lock()
	f.msgs = append(f.msgs, msg)
	f.mu.Unlock()
}

func (f *fakeNotifier) Messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.msgs...)
}

type fixture struct {
	gw      *fakeUpdater
	inv     *fakeInventory
	display *fakeDisplay
	focus   *fakeFocus
	notify  *fakeNotifier
	engine  *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		gw:      &fakeUpdater{},
		inv:     &fakeInventory{},
		display: newFakeDisplay(),
		focus:   &fakeFocus{},
		notify:  &fakeNotifier{},
	}
	f.engine = New(f.gw, f.inv, Config{
		Display:  f.display,
		Focus:    f.focus,
		Notifier: f.notify,
		Debounce: testDebounce,
	})
	t.Cleanup(f.engine.Stop)
	return f
}

// settle waits comfortably past the debounce window.
func settle() {
	time.Sleep(4 * testDebounce)
}

func TestAdjustByStepClampsAtZero(t *testing.T) {
	f := newFixture(t)
	f.display.SetQuantityValue(1, "0.00")

	if err := f.engine.AdjustByStep(context.Background(), 1, -1); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if got, _ := f.display.QuantityValue(1); got != "0.00" {
		t.Errorf("decrement at zero stays 0.00, got %q", got)
	}
	writes := f.gw.Writes()
	if len(writes) != 1 || writes[0].value != 0 {
		t.Errorf("persisted value: got %+v, want one write of 0", writes)
	}
}

func TestAdjustByStepIncrementFromZero(t *testing.T) {
	f := newFixture(t)
	f.display.SetQuantityValue(1, "0.00")

	if err := f.engine.AdjustByStep(context.Background(), 1, 1); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if got, _ := f.display.QuantityValue(1); got != "1.00" {
		t.Errorf("display: got %q, want 1.00", got)
	}
	writes := f.gw.Writes()
	if len(writes) != 1 || writes[0].value != 1 {
		t.Errorf("writes: got %+v", writes)
	}
	if f.inv.Reloads() != 1 {
		t.Errorf("a step must trigger a reload attempt, got %d", f.inv.Reloads())
	}
	patches := f.inv.Patches()
	if len(patches) != 1 || patches[0].value != 1 {
		t.Errorf("optimistic patch: got %+v", patches)
	}
}

func TestAdjustByStepRoundsFractionalSteps(t *testing.T) {
	f := newFixture(t)
	f.display.SetQuantityValue(2, "1.33")

	if err := f.engine.AdjustByStep(context.Background(), 2, 0.333); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if got, _ := f.display.QuantityValue(2); got != "1.66" {
		t.Errorf("display: got %q, want 1.66", got)
	}
}

func TestDebounceCoalescesEdits(t *testing.T) {
	f := newFixture(t)

	f.engine.OnQuantityInput(1, "5")
	f.engine.OnQuantityInput(1, "5.5")
	settle()

	writes := f.gw.Writes()
	if len(writes) != 1 {
		t.Fatalf("exactly one persistence call, got %d", len(writes))
	}
	if writes[0].value != 5.5 {
		t.Errorf("latest value wins: got %v, want 5.5", writes[0].value)
	}
	if got, _ := f.display.QuantityValue(1); got != "5.50" {
		t.Errorf("display normalized: got %q, want 5.50", got)
	}
	if f.inv.Reloads() != 1 {
		t.Errorf("reload attempts: got %d, want 1", f.inv.Reloads())
	}
}

func TestDebounceIndependentPerItem(t *testing.T) {
	f := newFixture(t)

	f.engine.OnQuantityInput(1, "2")
	f.engine.OnQuantityInput(2, "3")
	settle()

	writes := f.gw.Writes()
	if len(writes) != 2 {
		t.Fatalf("one write per item, got %+v", writes)
	}
}

func TestUnparsableInputIgnored(t *testing.T) {
	f := newFixture(t)

	for _, raw := range []string{"", "-", ".", "abc", "NaN", "+Inf"} {
		f.engine.OnQuantityInput(1, raw)
	}
	settle()

	if got := f.gw.Writes(); len(got) != 0 {
		t.Errorf("in-progress edits must not persist, got %+v", got)
	}
	if got := f.notify.Messages(); len(got) != 0 {
		t.Errorf("keystrokes never notify, got %v", got)
	}
}

func TestCommitSupersedesDebounce(t *testing.T) {
	f := newFixture(t)

	f.engine.OnQuantityInput(1, "5")
	if err := f.engine.OnQuantityCommit(context.Background(), 1, "7"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	settle()

	writes := f.gw.Writes()
	if len(writes) != 1 {
		t.Fatalf("exactly one write, got %+v", writes)
	}
	if writes[0].value != 7 {
		t.Errorf("commit value wins: got %v", writes[0].value)
	}
}

func TestCommitInvalidValueNotifiesAndSuppressesWrite(t *testing.T) {
	f := newFixture(t)

	err := f.engine.OnQuantityCommit(context.Background(), 1, "12a")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if len(f.gw.Writes()) != 0 {
		t.Error("no write on validation failure")
	}
	if msgs := f.notify.Messages(); len(msgs) != 1 {
		t.Errorf("synchronous notification expected, got %v", msgs)
	}
}

func TestCommitClampsNegative(t *testing.T) {
	f := newFixture(t)

	if err := f.engine.OnQuantityCommit(context.Background(), 1, "-4.2"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	writes := f.gw.Writes()
	if len(writes) != 1 || writes[0].value != 0 {
		t.Errorf("negative input clamps to 0 at the write boundary: %+v", writes)
	}
	if got, _ := f.display.QuantityValue(1); got != "0.00" {
		t.Errorf("display shows the clamped value: %q", got)
	}
}

func TestPersistFailureLeavesLocalStateUntouched(t *testing.T) {
	f := newFixture(t)
	f.gw.err = &gateway.GatewayError{Message: "offline"}

	err := f.engine.OnQuantityCommit(context.Background(), 1, "3")
	var gerr *gateway.GatewayError
	if !errors.As(err, &gerr) {
		t.Fatalf("gateway error must propagate, got %v", err)
	}
	if len(f.inv.Patches()) != 0 {
		t.Error("no optimistic patch when the write failed")
	}
	if f.inv.Reloads() != 0 {
		t.Error("no reload after a failed write")
	}
	if msgs := f.notify.Messages(); len(msgs) != 1 || msgs[0] != "offline" {
		t.Errorf("user-visible notification with the underlying message, got %v", msgs)
	}
}

func TestOptimisticPatchEvenWhenReloadDeferred(t *testing.T) {
	f := newFixture(t)
	f.focus.set(true)

	if err := f.engine.OnQuantityCommit(context.Background(), 1, "9"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	patches := f.inv.Patches()
	if len(patches) != 1 || patches[0].value != 9 {
		t.Errorf("patch applies independent of the reload: %+v", patches)
	}
	if f.inv.Reloads() != 0 {
		t.Error("reload must be deferred while an input holds focus")
	}
	if !f.engine.ReloadPending() {
		t.Error("deferral slot should be set")
	}
}

func TestDeferredReloadRunsOnceOnFocusLoss(t *testing.T) {
	f := newFixture(t)
	f.focus.set(true)

	// Several reloads requested while typing all coalesce.
	f.engine.RequestReload(context.Background())
	f.engine.RequestReload(context.Background())
	f.engine.RequestReload(context.Background())
	if f.inv.Reloads() != 0 {
		t.Fatal("no reload while focused")
	}

	// Focus moves to another quantity input: still deferred.
	f.engine.OnFocusChange(context.Background())
	if f.inv.Reloads() != 0 {
		t.Fatal("focus moving between inputs keeps the deferral")
	}

	f.focus.set(false)
	f.engine.OnFocusChange(context.Background())
	if f.inv.Reloads() != 1 {
		t.Fatalf("deferred reload must run exactly once, got %d", f.inv.Reloads())
	}

	// The slot was consumed; further focus changes do nothing.
	f.engine.OnFocusChange(context.Background())
	if f.inv.Reloads() != 1 {
		t.Errorf("consumed deferral must not re-fire, got %d", f.inv.Reloads())
	}
}

func TestRequestReloadImmediateWhenUnfocused(t *testing.T) {
	f := newFixture(t)

	f.engine.RequestReload(context.Background())
	if f.inv.Reloads() != 1 {
		t.Errorf("unfocused reload runs immediately, got %d", f.inv.Reloads())
	}
	if f.engine.ReloadPending() {
		t.Error("no deferral should be recorded")
	}
}

func TestReloadFailureNotifies(t *testing.T) {
	f := newFixture(t)
	f.inv.reloadErr = &gateway.GatewayError{Message: "fetch failed"}

	f.engine.RequestReload(context.Background())
	if msgs := f.notify.Messages(); len(msgs) != 1 || msgs[0] != "fetch failed" {
		t.Errorf("reload failure surfaces to the user: %v", msgs)
	}
}
