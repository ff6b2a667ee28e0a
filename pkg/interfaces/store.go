package interfaces

import (
	"context"

	"codelab/pkg/types"
)

// SessionStore is the local persisted session storage: bearer tokens per
// backend origin, the tutor-style preference, and last-saved drafts.
type SessionStore interface {
	Token(ctx context.Context, origin string) (string, error)
	SetToken(ctx context.Context, origin, token string) error

	TutorStyle(ctx context.Context) (types.TutorStyle, error)
	SetTutorStyle(ctx context.Context, style types.TutorStyle) error

	// SaveDraft records the last successfully saved file set for a lesson.
	SaveDraft(ctx context.Context, lessonID string, files []types.WorkspaceFile) error
	Draft(ctx context.Context, lessonID string) ([]types.WorkspaceFile, error)

	HealthCheck(ctx context.Context) error
	Close() error
}
