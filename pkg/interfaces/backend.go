package interfaces

import (
	"context"

	"codelab/pkg/types"
)

// BackendClient is the REST surface of the external lesson platform as
// consumed by this client. Implementations carry the bearer token; callers
// never see it.
type BackendClient interface {
	// FetchWorkspace returns lesson metadata plus either the learner's
	// prior submission files or the lesson template.
	FetchWorkspace(ctx context.Context, lessonID string) (*types.WorkspaceState, error)

	// SaveProgress persists the full file set without grading it.
	SaveProgress(ctx context.Context, lessonID string, files []types.WorkspaceFile) error

	// Submit grades the solution. The outcome is a tagged union: a
	// conceptual hint or a correct verdict.
	Submit(ctx context.Context, req *types.SubmitRequest) (*types.SubmitOutcome, error)

	// RunTests executes the lesson's test suite against the given files.
	RunTests(ctx context.Context, lessonID string, files []types.WorkspaceFile) (*types.TestRunResult, error)

	// RequestHint asks for an AI hint on a code selection.
	RequestHint(ctx context.Context, req *types.HintRequest) (string, error)

	// RequestFeedback asks for conceptual feedback on the whole solution.
	RequestFeedback(ctx context.Context, lessonID string, files []types.WorkspaceFile) (string, error)
}

// AuthoringClient covers the course-management calls used outside the
// lesson workspace.
type AuthoringClient interface {
	CreateCourse(ctx context.Context, title, description string) (string, error)
	CreateChapter(ctx context.Context, courseID, title string) (string, error)
	CreateLesson(ctx context.Context, chapterID, title, description string) (string, error)

	// SetLessonPublished toggles lesson visibility.
	SetLessonPublished(ctx context.Context, lessonID string, published bool) error
}
