package terminal

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/term"

	"codelab/pkg/interfaces"
)

// TTY is the real terminal view: the controlling terminal switched into raw
// mode so keystrokes flow through unbuffered, with SIGWINCH as the resize
// notification source.
type TTY struct {
	in       *os.File
	out      *os.File
	oldState *term.State

	inputFn  func([]byte)
	resizeFn func()

	cols, rows int

	sigCh  chan os.Signal
	stopCh chan struct{}
	closed bool
	mu     sync.Mutex
}

// NewTTY switches the given terminal into raw mode and starts delivering
// input and resize events. Input arriving before OnInput registration is
// discarded.
func NewTTY(in, out *os.File) (*TTY, error) {
	oldState, err := term.MakeRaw(int(in.Fd()))
	if err != nil {
		return nil, err
	}

	t := &TTY{
		in:       in,
		out:      out,
		oldState: oldState,
		sigCh:    make(chan os.Signal, 1),
		stopCh:   make(chan struct{}),
	}
	t.cols, t.rows, _ = term.GetSize(int(out.Fd()))

	signal.Notify(t.sigCh, syscall.SIGWINCH)
	go t.readLoop()
	go t.signalLoop()

	return t, nil
}

func (t *TTY) readLoop() {
	buf := make([]byte, 1024)
	for {
		n, err := t.in.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}

		t.mu.Lock()
		fn := t.inputFn
		t.mu.Unlock()
		if fn != nil {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			fn(chunk)
		}
	}
}

func (t *TTY) signalLoop() {
	for {
		select {
		case <-t.sigCh:
			t.mu.Lock()
			fn := t.resizeFn
			t.mu.Unlock()
			if fn != nil {
				fn()
			}
		case <-t.stopCh:
			return
		}
	}
}

// Write renders terminal output verbatim.
func (t *TTY) Write(data []byte) error {
	_, err := t.out.Write(data)
	return err
}

// OnInput registers the keystroke callback.
func (t *TTY) OnInput(fn func(data []byte)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inputFn = fn
}

// OnResize registers the resize notification callback.
func (t *TTY) OnResize(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resizeFn = fn
}

// Fit re-reads the terminal geometry.
func (t *TTY) Fit() error {
	cols, rows, err := term.GetSize(int(t.out.Fd()))
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.cols, t.rows = cols, rows
	t.mu.Unlock()
	return nil
}

// Size returns the last fitted geometry.
func (t *TTY) Size() (cols, rows int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cols, t.rows
}

// Close restores the terminal state and releases the signal observer.
// Idempotent.
func (t *TTY) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	signal.Stop(t.sigCh)
	close(t.stopCh)
	return term.Restore(int(t.in.Fd()), t.oldState)
}

var _ interfaces.TerminalView = (*TTY)(nil)
