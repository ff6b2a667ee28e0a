package watcher

import (
	"crypto/sha256"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"codelab/pkg/types"
)

// Event is one debounced on-disk edit of a workspace file.
type Event struct {
	Filename string
	Content  string
}

// Watcher materializes workspace files into a scratch directory and turns
// external editor writes into content-change events. The directory is a
// view of the workspace, not the store: deleting a file on disk removes
// nothing from the workspace, and files written by Materialize do not echo
// back as events.
type Watcher struct {
	dir      string
	debounce time.Duration
	fw       *fsnotify.Watcher
	events   chan Event

	// lastWritten maps filename to the digest of content this watcher put
	// on disk itself, so self-writes are suppressed.
	lastWritten map[string][32]byte
	timers      map[string]*time.Timer
	closed      bool
	mu          sync.Mutex
}

// New creates a watcher over dir and starts delivering events.
func New(dir string, debounce time.Duration) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		dir:         dir,
		debounce:    debounce,
		fw:          fw,
		events:      make(chan Event, 64),
		lastWritten: make(map[string][32]byte),
		timers:      make(map[string]*time.Timer),
	}
	go w.run()
	return w, nil
}

// Dir returns the scratch directory path.
func (w *Watcher) Dir() string {
	return w.dir
}

// Events is the stream of debounced edits.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Materialize writes the given files into the scratch directory. Writes
// performed here are remembered and will not come back as events.
func (w *Watcher) Materialize(fileSet []types.WorkspaceFile) error {
	for _, f := range fileSet {
		if !types.IsValidFilename(f.Filename) {
			return types.ErrInvalidFilename
		}
		w.mu.Lock()
		w.lastWritten[f.Filename] = sha256.Sum256([]byte(f.Content))
		w.mu.Unlock()

		if err := os.WriteFile(filepath.Join(w.dir, f.Filename), []byte(f.Content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// run collapses bursts of write events into one read per file.
func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if !types.IsValidFilename(name) {
				continue
			}
			w.schedule(name)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Printf("Scratch watcher error: %v", err)
		}
	}
}

func (w *Watcher) schedule(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if timer, ok := w.timers[name]; ok {
		timer.Reset(w.debounce)
		return
	}
	w.timers[name] = time.AfterFunc(w.debounce, func() {
		w.flush(name)
	})
}

func (w *Watcher) flush(name string) {
	w.mu.Lock()
	delete(w.timers, name)
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}

	data, err := os.ReadFile(filepath.Join(w.dir, name))
	if err != nil {
		// The file may have been removed mid-edit; the workspace keeps its
		// own copy regardless.
		return
	}

	digest := sha256.Sum256(data)
	w.mu.Lock()
	self := w.lastWritten[name] == digest
	if !self {
		w.lastWritten[name] = digest
	}
	w.mu.Unlock()
	if self {
		return
	}

	select {
	case w.events <- Event{Filename: name, Content: string(data)}:
	default:
		log.Printf("Dropping edit event for %s: consumer too slow", name)
	}
}

// Close stops watching and releases the notifier. Idempotent.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, timer := range w.timers {
		timer.Stop()
	}
	w.mu.Unlock()

	return w.fw.Close()
}
