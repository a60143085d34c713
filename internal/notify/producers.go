package notify

import (
	"context"
	"fmt"

	"github.com/UgochukwuChidera/studio-sub001/internal/model"
)

// FlowSucceeded records a finished generation. href points at the stored
// result and may be empty.
func (in *Inbox) FlowSucceeded(ctx context.Context, title, description, href string) (model.Notification, error) {
	return in.Add(ctx, model.Notification{
		Title:       title,
		Description: description,
		Href:        href,
		Category:    model.CategoryTestActivity,
		Icon:        "check-circle",
	})
}

// FlowFailed records a failed generation for the named feature.
func (in *Inbox) FlowFailed(ctx context.Context, feature string, cause error) (model.Notification, error) {
	description := "Something went wrong. Please try again."
	if cause != nil {
		description = cause.Error()
	}
	return in.Add(ctx, model.Notification{
		Title:       fmt.Sprintf("%s failed", feature),
		Description: description,
		Category:    model.CategoryError,
		Icon:        "alert-triangle",
	})
}

// System records a system message.
func (in *Inbox) System(ctx context.Context, title, description string) (model.Notification, error) {
	return in.Add(ctx, model.Notification{
		Title:       title,
		Description: description,
		Category:    model.CategorySystem,
		Icon:        "info",
	})
}

// ArtifactHref returns the navigation target for a stored artifact.
func ArtifactHref(kind model.ArtifactKind, id string) string {
	switch kind {
	case model.ArtifactPracticeTest:
		return "/tests/" + id
	case model.ArtifactFlashcards:
		return "/flashcards/" + id
	case model.ArtifactSummary:
		return "/summaries/" + id
	default:
		return ""
	}
}

// NoteHref returns the navigation target for a note.
func NoteHref(id string) string {
	return "/notes/" + id
}
