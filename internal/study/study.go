// Package study runs the generative flows over a user's notes and keeps
// the results and notifications that follow from them.
package study

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/UgochukwuChidera/studio-sub001/internal/flow"
	"github.com/UgochukwuChidera/studio-sub001/internal/model"
	"github.com/UgochukwuChidera/studio-sub001/internal/notify"
	"github.com/UgochukwuChidera/studio-sub001/internal/store"
)

// Feature names used in notifications.
const (
	FeatureImport       = "Handwriting import"
	FeaturePracticeTest = "Practice test"
	FeatureFlashcards   = "Flashcards"
	FeatureSummary      = "Summary"
)

// Source selects the text a flow works on: a stored note, or raw text
// when NoteID is empty.
type Source struct {
	NoteID string
	Text   string
}

// Service is one signed-in user's study workspace.
type Service struct {
	store  store.Store
	runner *flow.Runner
	inbox  *notify.Inbox
	logger *zap.Logger
	now    func() time.Time
}

// New creates a Service for the owner of inbox.
func New(s store.Store, runner *flow.Runner, inbox *notify.Inbox, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  s,
		runner: runner,
		inbox:  inbox,
		logger: logger.With(zap.String("user", inbox.UserID())),
		now:    time.Now,
	}
}

// UserID returns the workspace owner.
func (s *Service) UserID() string {
	return s.inbox.UserID()
}

// Readiness reports whether the generator is configured.
func (s *Service) Readiness() flow.Readiness {
	return s.runner.Readiness()
}

// Inbox returns the owner's notifications.
func (s *Service) Inbox() *notify.Inbox {
	return s.inbox
}

// ImportHandwriting transcribes a photo of notes into a new note. An
// empty title is replaced with a dated default.
func (s *Service) ImportHandwriting(ctx context.Context, title, photoDataURI string) (*model.Note, error) {
	out, err := s.runner.ExtractText(ctx, flow.OCRInput{PhotoDataURI: photoDataURI})
	if err != nil {
		s.reportFailure(ctx, FeatureImport, err)
		return nil, err
	}

	if strings.TrimSpace(title) == "" {
		title = "Handwritten notes " + s.now().Format("2006-01-02 15:04")
	}
	note, err := s.store.CreateNote(ctx, model.Note{
		UserID:  s.UserID(),
		Title:   title,
		Content: out.ExtractedText,
	})
	if err != nil {
		return nil, fmt.Errorf("saving imported note: %w", err)
	}

	s.reportSuccess(ctx, FeatureImport, note.Title, notify.NoteHref(note.ID))
	return note, nil
}

// PracticeTestOptions shape a generated practice test.
type PracticeTestOptions struct {
	QuestionType      flow.QuestionType
	NumberOfQuestions int
	BloomLevel        flow.BloomLevel
}

// GeneratePracticeTest writes a practice test from src and stores it.
func (s *Service) GeneratePracticeTest(ctx context.Context, src Source, opts PracticeTestOptions) (flow.PracticeTest, *model.Artifact, error) {
	text, noteID, err := s.resolve(ctx, src)
	if err != nil {
		return flow.PracticeTest{}, nil, err
	}
	in := flow.PracticeTestInput{
		TextContent:       text,
		QuestionType:      opts.QuestionType,
		NumberOfQuestions: opts.NumberOfQuestions,
		BloomLevel:        opts.BloomLevel,
	}
	return generate(ctx, s, FeaturePracticeTest, model.ArtifactPracticeTest, s.runner.GeneratePracticeTest, in, noteID,
		func(t flow.PracticeTest) string { return t.TestTitle })
}

// GenerateFlashcards turns src into flashcards and stores them. A nil
// count lets the generator choose.
func (s *Service) GenerateFlashcards(ctx context.Context, src Source, count *int) (flow.Flashcards, *model.Artifact, error) {
	text, noteID, err := s.resolve(ctx, src)
	if err != nil {
		return flow.Flashcards{}, nil, err
	}
	in := flow.FlashcardsInput{TextContent: text, NumberOfFlashcards: count}
	return generate(ctx, s, FeatureFlashcards, model.ArtifactFlashcards, s.runner.GenerateFlashcards, in, noteID,
		func(f flow.Flashcards) string { return f.Title })
}

// SummarizeNote rewrites src as structured notes and stores the result.
func (s *Service) SummarizeNote(ctx context.Context, src Source, length flow.NoteLength) (flow.Notes, *model.Artifact, error) {
	text, noteID, err := s.resolve(ctx, src)
	if err != nil {
		return flow.Notes{}, nil, err
	}
	in := flow.NotesInput{TextContent: text, NoteLength: length}
	return generate(ctx, s, FeatureSummary, model.ArtifactSummary, s.runner.GenerateNotes, in, noteID,
		func(n flow.Notes) string { return n.Title })
}

// resolve returns the text of src and the id of its note, if any.
func (s *Service) resolve(ctx context.Context, src Source) (string, *string, error) {
	if src.NoteID == "" {
		return src.Text, nil, nil
	}
	note, err := s.store.GetNoteByID(ctx, s.UserID(), src.NoteID)
	if err != nil {
		return "", nil, err
	}
	id := note.ID
	return note.Content, &id, nil
}

// generate runs a flow, stores its output as an artifact and notifies
// the user either way. Flow errors are returned unchanged.
func generate[In, Out any](
	ctx context.Context,
	s *Service,
	feature string,
	kind model.ArtifactKind,
	run func(context.Context, In) (Out, error),
	in In,
	noteID *string,
	title func(Out) string,
) (Out, *model.Artifact, error) {
	out, err := run(ctx, in)
	if err != nil {
		s.reportFailure(ctx, feature, err)
		return out, nil, err
	}

	payload, err := json.Marshal(out)
	if err != nil {
		return out, nil, fmt.Errorf("encoding %s: %w", kind, err)
	}
	artifact, err := s.store.SaveArtifact(ctx, model.Artifact{
		UserID:  s.UserID(),
		NoteID:  noteID,
		Kind:    kind,
		Title:   title(out),
		Payload: string(payload),
	})
	if err != nil {
		return out, nil, err
	}

	s.reportSuccess(ctx, feature, artifact.Title, notify.ArtifactHref(kind, artifact.ID))
	return out, artifact, nil
}

func (s *Service) reportSuccess(ctx context.Context, feature, title, href string) {
	if _, err := s.inbox.FlowSucceeded(ctx, feature+" ready", title, href); err != nil {
		s.logger.Warn("recording notification", zap.String("feature", feature), zap.Error(err))
	}
}

func (s *Service) reportFailure(ctx context.Context, feature string, cause error) {
	s.logger.Info("flow failed",
		zap.String("feature", feature),
		zap.Bool("invalid_input", flow.IsValidation(cause)),
		zap.Error(cause),
	)
	if errors.Is(cause, context.Canceled) {
		return
	}
	if _, err := s.inbox.FlowFailed(ctx, feature, cause); err != nil {
		s.logger.Warn("recording notification", zap.String("feature", feature), zap.Error(err))
	}
}

// Artifacts lists the stored results of kind, or all when kind is nil.
func (s *Service) Artifacts(ctx context.Context, kind *model.ArtifactKind) ([]model.Artifact, error) {
	return s.store.GetArtifacts(ctx, s.UserID(), kind)
}

// Artifact returns a stored result by id.
func (s *Service) Artifact(ctx context.Context, id string) (*model.Artifact, error) {
	return s.store.GetArtifactByID(ctx, s.UserID(), id)
}
