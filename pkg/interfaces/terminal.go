package interfaces

// TerminalView abstracts the visible terminal surface (a raw-mode tty in
// the CLI, a fake in tests). Input and resize callbacks must be registered
// before the view starts delivering events.
type TerminalView interface {
	// Write renders inbound terminal output verbatim.
	Write(data []byte) error

	// OnInput registers the keystroke callback. Every chunk of local input
	// is delivered as-is; there is no line buffering.
	OnInput(fn func(data []byte))

	// OnResize registers the resize notification callback.
	OnResize(fn func())

	// Fit recomputes the visible geometry after a resize. Safe to coalesce.
	Fit() error

	// Close tears the view down and restores the underlying terminal state.
	Close() error
}
