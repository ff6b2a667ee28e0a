package terminal

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"codelab/pkg/interfaces"
	"codelab/pkg/types"
)

const defaultResizeDebounce = 50 * time.Millisecond

// Adapter binds a terminal view to a transport session: local keystrokes
// become outbound terminal-input frames, inbound terminal-output frames are
// written to the view verbatim. The adapter's lifecycle is independent of
// the socket's; send failures while disconnected are dropped silently.
type Adapter struct {
	view     interfaces.TerminalView
	session  interfaces.Transport
	debounce time.Duration

	attached bool
	disposed bool
	resizeCh chan struct{}
	stopCh   chan struct{}
	mu       sync.Mutex
}

// NewAdapter creates an unattached adapter. A zero debounce selects the
// default resize coalescing interval.
func NewAdapter(debounce time.Duration) *Adapter {
	if debounce <= 0 {
		debounce = defaultResizeDebounce
	}
	return &Adapter{debounce: debounce}
}

// Attach binds the view to the session. Idempotent: a second call while
// attached is a no-op, which keeps re-renders from stacking duplicate
// views. Attach after Dispose is also a no-op.
func (a *Adapter) Attach(view interfaces.TerminalView, session interfaces.Transport) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.attached || a.disposed {
		return
	}
	a.attached = true
	a.view = view
	a.session = session
	a.resizeCh = make(chan struct{}, 1)
	a.stopCh = make(chan struct{})

	session.Handle(types.KindTerminalOut, a.handleOutput)

	view.OnInput(func(data []byte) {
		// Pass-through pty transport: every chunk goes out immediately,
		// no line buffering. Drops while disconnected are intentional.
		_ = a.session.Send(types.KindTerminalIn, string(data))
	})

	view.OnResize(func() {
		select {
		case a.resizeCh <- struct{}{}:
		default:
		}
	})

	go a.resizeLoop()
}

// handleOutput writes inbound terminal output to the view verbatim.
func (a *Adapter) handleOutput(payload json.RawMessage) {
	var text string
	if err := json.Unmarshal(payload, &text); err != nil {
		log.Printf("Dropping unreadable terminal output: %v", err)
		return
	}

	a.mu.Lock()
	view := a.view
	disposed := a.disposed
	a.mu.Unlock()

	if disposed || view == nil {
		return
	}
	if err := view.Write([]byte(text)); err != nil {
		log.Printf("Terminal write failed: %v", err)
	}
}

// resizeLoop coalesces resize notifications: a burst of events produces one
// refit after the debounce interval. Display concern only; dropped refits
// never affect the protocol.
func (a *Adapter) resizeLoop() {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-a.resizeCh:
			if timer == nil {
				timer = time.NewTimer(a.debounce)
			} else {
				timer.Reset(a.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			a.mu.Lock()
			view := a.view
			disposed := a.disposed
			a.mu.Unlock()
			if !disposed && view != nil {
				if err := view.Fit(); err != nil {
					log.Printf("Terminal refit failed: %v", err)
				}
			}
		case <-a.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// Attached reports whether the adapter currently owns a view.
func (a *Adapter) Attached() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.attached && !a.disposed
}

// Dispose tears down the view and releases the resize observer. Must be
// called when the owning view unmounts; idempotent.
func (a *Adapter) Dispose() {
	a.mu.Lock()
	if a.disposed || !a.attached {
		a.disposed = true
		a.mu.Unlock()
		return
	}
	a.disposed = true
	view := a.view
	a.view = nil
	close(a.stopCh)
	a.mu.Unlock()

	if err := view.Close(); err != nil {
		log.Printf("Terminal view close failed: %v", err)
	}
}
