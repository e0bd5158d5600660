// Package hotkey listens for global key chords and maps them to capture
// requests.
package hotkey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.aimuz.me/flicker/internal/types"
)

// Binding maps a chord to a capture mode.
type Binding struct {
	Chord   Chord
	Mode    types.Mode
	Monitor int // 1-based, only for types.ModeMonitor
}

// Handler runs the action bound to a chord.
type Handler func(Binding) error

// Event is a single key press or release.
type Event struct {
	Code uint16
	Down bool
}

// Source delivers key events until it is closed.
type Source interface {
	Events() <-chan Event
	Close()
}

// HotkeyManager tracks held keys and fires bindings when a chord completes.
// Bindings are fixed at construction.
type HotkeyManager struct {
	bindings  []compiled
	handler   Handler
	newSource func() (Source, error)
	onStatus  func(granted bool)

	mu     sync.Mutex
	src    Source
	cancel context.CancelFunc
	done   chan struct{}

	held map[uint16]bool
}

// NewHotkeyManager creates a manager for bindings. Chords must be non-empty.
func NewHotkeyManager(bindings []Binding, handler Handler) (*HotkeyManager, error) {
	m := &HotkeyManager{
		handler:   handler,
		newSource: NewHookSource,
		held:      make(map[uint16]bool),
	}
	for _, b := range bindings {
		if len(b.Chord.keys) == 0 {
			return nil, errors.New("binding with empty chord")
		}
		m.bindings = append(m.bindings, compile(b))
	}
	return m, nil
}

// SetStatusCallback sets a callback reporting whether the OS lets the
// process observe global key events.
func (m *HotkeyManager) SetStatusCallback(cb func(granted bool)) {
	m.onStatus = cb
}

// Start begins listening in the background.
func (m *HotkeyManager) Start() error {
	granted := IsAccessibilityEnabled(true)
	if m.onStatus != nil {
		m.onStatus(granted)
	}
	if !granted {
		return errors.New("accessibility permission required")
	}

	src, err := m.newSource()
	if err != nil {
		return fmt.Errorf("start key hook: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	m.mu.Lock()
	m.src, m.cancel, m.done = src, cancel, done
	m.mu.Unlock()

	go func() {
		defer close(done)
		if err := m.Listen(ctx, src); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("hotkey listener stopped", "error", err)
		}
	}()
	return nil
}

// Stop ends a listener started with Start and waits for it to exit.
func (m *HotkeyManager) Stop() {
	m.mu.Lock()
	src, cancel, done := m.src, m.cancel, m.done
	m.src, m.cancel, m.done = nil, nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	src.Close()
	<-done
}

// Listen consumes events from src and blocks until ctx is done or the
// source is exhausted. Actions run synchronously on the listening goroutine.
func (m *HotkeyManager) Listen(ctx context.Context, src Source) error {
	events := src.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			m.handle(ev)
		}
	}
}

func (m *HotkeyManager) handle(ev Event) {
	if !ev.Down {
		delete(m.held, ev.Code)
		return
	}
	if m.held[ev.Code] {
		return // auto-repeat
	}
	m.held[ev.Code] = true

	if b, ok := m.match(ev.Code); ok {
		m.fire(b)
	}
}

// match returns the most specific binding completed by pressing code.
func (m *HotkeyManager) match(code uint16) (Binding, bool) {
	best := -1
	for i, c := range m.bindings {
		if !c.uses(code) || !c.heldIn(m.held) {
			continue
		}
		if best == -1 || len(c.groups) > len(m.bindings[best].groups) {
			best = i
		}
	}
	if best == -1 {
		return Binding{}, false
	}
	return m.bindings[best].binding, true
}

func (m *HotkeyManager) fire(b Binding) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("hotkey action panicked", "chord", b.Chord.String(), "panic", r)
		}
	}()

	if err := m.handler(b); err != nil {
		slog.Error("hotkey action", "chord", b.Chord.String(), "mode", b.Mode.String(), "error", err)
	}
}
