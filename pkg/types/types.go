package types

import (
	"encoding/json"
	"time"
)

// Wire tags for socket frames. Standalone sessions and live-homework
// sessions share one frame shape; only the tag vocabulary differs.
const (
	MessageTypeTerminalIn         = "TERMINAL_IN"
	MessageTypeTerminalOut        = "TERMINAL_OUT"
	MessageTypeHomeworkTerminalIn = "HOMEWORK_TERMINAL_IN"
	MessageTypeHomeworkCodeUpdate = "HOMEWORK_CODE_UPDATE"
	MessageTypeHomeworkJoin       = "HOMEWORK_JOIN"
)

// SessionMode is fixed at transport open time and never changes for the
// lifetime of one session. A new teacher-session reference requires a
// reconnect with a fresh session identifier.
type SessionMode string

const (
	ModeStandalone SessionMode = "standalone"
	ModeLive       SessionMode = "live"
)

// TutorStyle selects the phrasing of AI hints. The vocabulary is fixed;
// the preference itself is stored locally and injected into the controller.
type TutorStyle string

const (
	StyleSocratic    TutorStyle = "socratic"
	StyleDirect      TutorStyle = "direct"
	StyleEncouraging TutorStyle = "encouraging"
)

// Submit response discriminator values. Anything else is treated as a
// backend contract violation and surfaced verbatim.
const (
	SubmitStatusCorrect = "correct"
	SubmitStatusHint    = "hint"
)

// WorkspaceFile is one file in the learner's workspace. ID is a stable
// opaque identity (backend-supplied on load, generated locally on add);
// Filename is unique within one workspace.
type WorkspaceFile struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Lesson metadata, read-only from the client's perspective.
type Lesson struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CourseID    string `json:"course_id"`
}

// Submission is the learner's prior graded attempt, if any. Displayed,
// never mutated by the client.
type Submission struct {
	Grade       *float64  `json:"grade,omitempty"`
	Feedback    *string   `json:"feedback,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// WorkspaceState is the initial state fetched once per lesson view.
type WorkspaceState struct {
	Lesson       Lesson          `json:"lesson"`
	Files        []WorkspaceFile `json:"files"`
	ActiveFileID string          `json:"active_file_id"`
	Submission   *Submission     `json:"submission,omitempty"`
}

// SessionDescriptor identifies one transport session. SessionID is
// generated per open; Mode is derived once from TeacherSessionID presence.
type SessionDescriptor struct {
	SessionID        string      `json:"session_id"`
	TeacherSessionID string      `json:"teacher_session_id,omitempty"`
	Mode             SessionMode `json:"mode"`
}

// Frame is the single wire shape for all socket traffic in both directions.
// Payload stays raw until the kind is known, so unknown types are skipped
// without ever touching the payload.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// CodeUpdatePayload carries the full file set on every live-mode edit.
// The teacher view reconciles from the complete snapshot, not from deltas.
type CodeUpdatePayload struct {
	Files          []WorkspaceFile `json:"files"`
	ActiveFilename string          `json:"active_filename"`
}

// JoinPayload announces a learner session to the teacher-monitoring side.
// Sent exactly once, before any other live-mode traffic.
type JoinPayload struct {
	SessionID string `json:"session_id"`
	LessonID  string `json:"lesson_id"`
}

// TestRunResult is what the result panel renders after a test run.
type TestRunResult struct {
	Passed    int    `json:"passed"`
	Failed    int    `json:"failed"`
	Total     int    `json:"total"`
	RawOutput string `json:"raw_output"`
}

// SubmitOutcome is the tagged union returned by a successful submit.
/// Status discriminates: "correct" carries an optional grade, "hint"
// carries the conceptual hint text.
type SubmitOutcome struct {
	Status  string   `json:"status"`
	Hint    string   `json:"hint,omitempty"`
	Message string   `json:"message,omitempty"`
	Grade   *float64 `json:"grade,omitempty"`
}

// HintRequest is the payload for an AI hint on a code selection.
type HintRequest struct {
	LessonID      string     `json:"lesson_id"`
	Selection     string     `json:"selection"`
	StyleModifier TutorStyle `json:"style_modifier"`
}

// SubmitRequest carries everything the grader needs, including the
// coarse engagement signals collected client-side.
type SubmitRequest struct {
	LessonID       string          `json:"lesson_id"`
	Files          []WorkspaceFile `json:"files"`
	ElapsedSeconds int64           `json:"elapsed_seconds"`
	ChurnCount     int             `json:"churn_count"`
}
