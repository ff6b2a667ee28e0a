package workspace

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"codelab/internal/churn"
	"codelab/internal/files"
	"codelab/internal/terminal"
	"codelab/pkg/interfaces"
	"codelab/pkg/types"
)

// State is the controller's lifecycle position. Loading -> Ready ->
// Submitting -> Ready loops for the life of one lesson view; Error is
// reached from a failed load and left only by a fresh Load.
type State string

const (
	StateLoading    State = "loading"
	StateReady      State = "ready"
	StateSubmitting State = "submitting"
	StateError      State = "error"
)

// Events are the controller's outward notifications. Any callback may be
// nil. Callbacks fire on whatever goroutine completed the operation; the
// consumer serializes rendering.
type Events struct {
	OnStateChange  func(State)
	OnNotice       func(text string)
	OnErrorMessage func(text string)
	OnTestResult   func(result types.TestRunResult)
	OnHint         func(text string)
	OnNavigateAway func()
}

// Deps are the controller's injected collaborators. Style is the read-only
// tutoring-style preference, resolved by the caller at construction so the
// controller never reads ambient global state.
type Deps struct {
	Backend    interfaces.BackendClient
	NewSession func() interfaces.Transport
	View       interfaces.TerminalView // nil runs the workspace headless
	Store      interfaces.SessionStore // nil disables draft persistence
	Style      types.TutorStyle

	NavigateDelay  time.Duration
	ResizeDebounce time.Duration

	Events Events
}

// Controller owns one lesson view: the file set, the churn tracker, the
// transport session, and the terminal adapter. It is created per view and
// discarded on navigation; nothing is shared across views.
type Controller struct {
	deps Deps

	fileStore *files.Store
	tracker   *churn.Tracker
	adapter   *terminal.Adapter
	session   interfaces.Transport

	state    State
	errMsg   string
	lesson   types.Lesson
	prior    *types.Submission
	lessonID string
	loadedAt time.Time

	// ctx bounds the controller's mount lifetime. Results of calls that
	// complete after Shutdown are discarded, never applied.
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex
}

// NewController creates an unloaded controller.
func NewController(deps Deps) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		deps:      deps,
		fileStore: files.NewStore(),
		tracker:   churn.NewTracker(),
		adapter:   terminal.NewAdapter(deps.ResizeDebounce),
		state:     StateLoading,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (c *Controller) alive() bool {
	return c.ctx.Err() == nil
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	if c.deps.Events.OnStateChange != nil {
		c.deps.Events.OnStateChange(s)
	}
}

func (c *Controller) notice(text string) {
	if c.deps.Events.OnNotice != nil {
		c.deps.Events.OnNotice(text)
	}
}

func (c *Controller) errorMessage(text string) {
	if c.deps.Events.OnErrorMessage != nil {
		c.deps.Events.OnErrorMessage(text)
	}
}

// Load fetches the initial workspace state, opens the transport session
// (mode decided here, once, from the teacher-session reference), and
// attaches the terminal. A fetch failure lands in StateError with the
// message retained; there is no automatic retry.
func (c *Controller) Load(ctx context.Context, lessonID, authToken, teacherSessionRef string) error {
	if authToken == "" || lessonID == "" {
		return interfaces.ErrLoginRequired
	}

	c.setState(StateLoading)

	state, err := c.deps.Backend.FetchWorkspace(ctx, lessonID)
	if !c.alive() {
		return nil
	}
	if err != nil {
		c.mu.Lock()
		c.errMsg = err.Error()
		c.mu.Unlock()
		c.setState(StateError)
		c.errorMessage(err.Error())
		return err
	}

	c.fileStore.Load(state.Files, state.ActiveFileID)
	if active := c.fileStore.Active(); active != nil {
		c.tracker.ResetAll(active.Content)
	} else {
		c.tracker.ResetAll("")
	}

	c.mu.Lock()
	c.lesson = state.Lesson
	c.prior = state.Submission
	c.lessonID = lessonID
	c.loadedAt = time.Now()
	c.errMsg = ""
	c.mu.Unlock()

	// The socket is a convenience channel, not the system of record: a
	// failed open leaves the workspace usable without a terminal.
	session := c.deps.NewSession()
	if err := session.Open(ctx, lessonID, authToken, teacherSessionRef); err != nil {
		log.Printf("Transport open failed for lesson %s: %v", lessonID, err)
		c.errorMessage(fmt.Sprintf("terminal unavailable: %v", err))
	} else {
		c.mu.Lock()
		c.session = session
		c.mu.Unlock()
		if c.deps.View != nil {
			c.adapter.Attach(c.deps.View, session)
		}
	}

	c.setState(StateReady)
	return nil
}

// State returns the current lifecycle position.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// ErrorMessage returns the retained load failure message, if any.
func (c *Controller) ErrorMessage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errMsg
}

// Lesson returns the loaded lesson metadata.
func (c *Controller) Lesson() types.Lesson {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lesson
}

// PriorSubmission returns the learner's previous graded attempt, if any.
func (c *Controller) PriorSubmission() *types.Submission {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.prior
}

// SessionDescriptor identifies the transport session. A zero descriptor
// means the socket never opened.
func (c *Controller) SessionDescriptor() types.SessionDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return types.SessionDescriptor{}
	}
	return c.session.Descriptor()
}

// Files returns the current file set in insertion order.
func (c *Controller) Files() []types.WorkspaceFile {
	return c.fileStore.All()
}

// ActiveFile returns the active file, or nil before load.
func (c *Controller) ActiveFile() *types.WorkspaceFile {
	return c.fileStore.Active()
}

// Churn returns the accumulated churn counter.
func (c *Controller) Churn() int {
	return c.tracker.Total()
}

// OnContentChange records an edit to the active file: churn first, then
// the store, then (live mode only) a fire-and-forget broadcast of the full
// file set. Send failures are dropped by design.
func (c *Controller) OnContentChange(text string) {
	c.tracker.Observe(text)
	c.fileStore.UpdateActiveContent(text)

	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()
	if session == nil || session.Descriptor().Mode != types.ModeLive {
		return
	}

	active := c.fileStore.Active()
	activeName := ""
	if active != nil {
		activeName = active.Filename
	}
	_ = session.Send(types.KindCodeBroadcast, types.CodeUpdatePayload{
		Files:          c.fileStore.All(),
		ActiveFilename: activeName,
	})
}

// OnSwitchFile moves the active pointer and rebaselines churn on the new
// active file. Unknown ids are a silent no-op.
func (c *Controller) OnSwitchFile(fileID string) {
	if f := c.fileStore.SetActive(fileID); f != nil {
		c.tracker.Reset(f.Content)
	}
}

// AddFile appends a new file and makes it active. The new (empty) content
// becomes the churn baseline, same as any file switch.
func (c *Controller) AddFile(filename string) (*types.WorkspaceFile, error) {
	f, err := c.fileStore.Add(filename)
	if err != nil {
		return nil, err
	}
	c.tracker.Reset(f.Content)
	return f, nil
}

// RemoveFile deletes a file; removing the last one is refused with a
// user-visible error, never a crash. If the active file was removed, churn
// rebaselines on the newly active one.
func (c *Controller) RemoveFile(fileID string) error {
	if err := c.fileStore.Remove(fileID); err != nil {
		return err
	}
	if active := c.fileStore.Active(); active != nil {
		c.tracker.Reset(active.Content)
	}
	return nil
}

// Save posts the full file set to the save-progress endpoint. Local state
// is already authoritative, so success changes nothing locally; failure
// surfaces the error and changes nothing either.
func (c *Controller) Save(ctx context.Context) error {
	if c.State() != StateReady {
		return ErrNotReady
	}
	c.setState(StateSubmitting)

	c.mu.RLock()
	lessonID := c.lessonID
	c.mu.RUnlock()
	fileSet := c.fileStore.All()

	err := c.deps.Backend.SaveProgress(ctx, lessonID, fileSet)
	if !c.alive() {
		return nil
	}
	c.setState(StateReady)
	if err != nil {
		c.errorMessage(err.Error())
		return err
	}

	if c.deps.Store != nil {
		if derr := c.deps.Store.SaveDraft(ctx, lessonID, fileSet); derr != nil {
			log.Printf("Draft persistence failed for lesson %s: %v", lessonID, derr)
		}
	}
	c.notice("progress saved")
	return nil
}

// Submit grades the solution, carrying elapsed wall-clock time and the
// churn counter. A hint outcome is displayed and the view stays put; a
// correct outcome schedules delayed navigation so the success message has
// time to render.
func (c *Controller) Submit(ctx context.Context) (*types.SubmitOutcome, error) {
	if c.State() != StateReady {
		return nil, ErrNotReady
	}
	c.setState(StateSubmitting)

	c.mu.RLock()
	lessonID := c.lessonID
	elapsed := int64(time.Since(c.loadedAt).Seconds())
	c.mu.RUnlock()

	outcome, err := c.deps.Backend.Submit(ctx, &types.SubmitRequest{
		LessonID:       lessonID,
		Files:          c.fileStore.All(),
		ElapsedSeconds: elapsed,
		ChurnCount:     c.tracker.Total(),
	})
	if !c.alive() {
		return nil, nil
	}
	c.setState(StateReady)
	if err != nil {
		c.errorMessage(err.Error())
		return nil, err
	}

	switch outcome.Status {
	case types.SubmitStatusHint:
		if c.deps.Events.OnHint != nil {
			c.deps.Events.OnHint(outcome.Hint)
		}
	case types.SubmitStatusCorrect:
		c.notice("solution correct")
		delay := c.deps.NavigateDelay
		time.AfterFunc(delay, func() {
			if c.alive() && c.deps.Events.OnNavigateAway != nil {
				c.deps.Events.OnNavigateAway()
			}
		})
	}
	return outcome, nil
}

// RunTests executes the lesson's tests against the current files. The
// returned result is always renderable: a transport failure becomes a
// synthetic single-failure result carrying the error text.
func (c *Controller) RunTests(ctx context.Context) types.TestRunResult {
	c.mu.RLock()
	lessonID := c.lessonID
	c.mu.RUnlock()

	result, err := c.deps.Backend.RunTests(ctx, lessonID, c.fileStore.All())
	if !c.alive() {
		return types.TestRunResult{}
	}
	if err != nil {
		result = &types.TestRunResult{
			Passed:    0,
			Failed:    1,
			Total:     1,
			RawOutput: err.Error(),
		}
	}
	if c.deps.Events.OnTestResult != nil {
		c.deps.Events.OnTestResult(*result)
	}
	return *result
}

// GetHint asks for an AI hint on the selected code. An empty selection is
// refused locally; no request leaves the machine.
func (c *Controller) GetHint(ctx context.Context, selection string) (string, error) {
	if strings.TrimSpace(selection) == "" {
		return "", ErrEmptySelection
	}

	c.mu.RLock()
	lessonID := c.lessonID
	c.mu.RUnlock()

	hint, err := c.deps.Backend.RequestHint(ctx, &types.HintRequest{
		LessonID:      lessonID,
		Selection:     selection,
		StyleModifier: c.deps.Style,
	})
	if !c.alive() {
		return "", nil
	}
	if err != nil {
		c.errorMessage(err.Error())
		return "", err
	}
	if c.deps.Events.OnHint != nil {
		c.deps.Events.OnHint(hint)
	}
	return hint, nil
}

// GetFeedback asks for conceptual feedback on the whole solution.
func (c *Controller) GetFeedback(ctx context.Context) (string, error) {
	c.mu.RLock()
	lessonID := c.lessonID
	c.mu.RUnlock()
	if lessonID == "" {
		return "", ErrNotLoaded
	}

	feedback, err := c.deps.Backend.RequestFeedback(ctx, lessonID, c.fileStore.All())
	if !c.alive() {
		return "", nil
	}
	if err != nil {
		c.errorMessage(err.Error())
		return "", err
	}
	return feedback, nil
}

// Shutdown tears the view down: transport closed, terminal disposed, and
// any still-in-flight call's result discarded. Idempotent.
func (c *Controller) Shutdown() {
	c.cancel()

	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()
	if session != nil {
		if err := session.Close(); err != nil {
			log.Printf("Transport close failed: %v", err)
		}
	}
	c.adapter.Dispose()
}
