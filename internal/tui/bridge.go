package tui

import "sync"

// bridge is the narrow surface the edit engine sees of the UI. The
// engine's debounce timers fire off the Bubble Tea loop, so access is
// guarded; the model drains notices and mirrors values on its own
// ticks.
type bridge struct {
	mu      sync.Mutex
	values  map[int]string // id -> rendered quantity text
	focused bool           // a quantity input holds focus
	notices []string
	badge   int // shortage count pushed by the store
}

func newBridge() *bridge {
	return &bridge{values: make(map[int]string)}
}

// QuantityValue implements engine.Display.
func (b *bridge) QuantityValue(id int) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.values[id]
	return v, ok
}

// SetQuantityValue implements engine.Display.
func (b *bridge) SetQuantityValue(id int, formatted string) {
	b.mu.Lock()
	b.values[id] = formatted
	b.mu.Unlock()
}

// QuantityInputFocused implements engine.FocusChecker.
func (b *bridge) QuantityInputFocused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.focused
}

func (b *bridge) setFocused(v bool) {
	b.mu.Lock()
	b.focused = v
	b.mu.Unlock()
}

// Notify implements engine.Notifier.
func (b *bridge) Notify(message string) {
	b.mu.Lock()
	b.notices = append(b.notices, message)
	b.mu.Unlock()
}

// setBadge is the store's badge sink.
func (b *bridge) setBadge(count int) {
	b.mu.Lock()
	b.badge = count
	b.mu.Unlock()
}

func (b *bridge) badgeCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.badge
}

// drainNotices returns and clears queued notices.
func (b *bridge) drainNotices() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	return out
}
