package hotkey

import (
	"sync"

	hook "github.com/robotn/gohook"
)

// hookSource adapts gohook's global event stream to Source.
type hookSource struct {
	events chan Event
	done   chan struct{}
	once   sync.Once
}

// NewHookSource starts the global keyboard hook.
func NewHookSource() (Source, error) {
	raw := hook.Start()
	s := &hookSource{
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(s.events)
		for ev := range raw {
			var out Event
			switch ev.Kind {
			case hook.KeyDown, hook.KeyHold:
				out = Event{Code: ev.Keycode, Down: true}
			case hook.KeyUp:
				out = Event{Code: ev.Keycode}
			default:
				continue
			}
			// Typed events carry no key code.
			if out.Code == 0 {
				continue
			}
			select {
			case s.events <- out:
			case <-s.done:
				return
			}
		}
	}()
	return s, nil
}

func (s *hookSource) Events() <-chan Event { return s.events }

func (s *hookSource) Close() {
	s.once.Do(func() {
		close(s.done)
		hook.End()
	})
}
