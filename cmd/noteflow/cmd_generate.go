package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/UgochukwuChidera/studio-sub001/internal/flow"
	"github.com/UgochukwuChidera/studio-sub001/internal/model"
	"github.com/UgochukwuChidera/studio-sub001/internal/study"
)

// sourceFlags selects the text a generation command works on.
type sourceFlags struct {
	text string
	file string
	json bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.text, "text", "", "use this text instead of a note")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "read the text from a file (- for stdin)")
	cmd.Flags().BoolVar(&f.json, "json", false, "print the result as JSON")
}

func (f *sourceFlags) source(cmd *cobra.Command, args []string) (study.Source, error) {
	if len(args) == 1 {
		if f.text != "" || f.file != "" {
			return study.Source{}, errors.New("give either a note id or --text/--file, not both")
		}
		return study.Source{NoteID: args[0]}, nil
	}
	body, err := noteBody(cmd, f.text, f.file)
	if err != nil {
		return study.Source{}, err
	}
	if body == "" {
		return study.Source{}, errors.New("give a note id, --text or --file")
	}
	return study.Source{Text: body}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseQuestionType(s string) (flow.QuestionType, error) {
	switch strings.ToLower(s) {
	case "mcq", "multiplechoice", "multiple-choice":
		return flow.MultipleChoice, nil
	case "descriptive", "open":
		return flow.Descriptive, nil
	default:
		return "", fmt.Errorf("unknown question type %q (want mcq or descriptive)", s)
	}
}

// photoDataURI reads an image file into a data URI, detecting its type
// from the content.
func photoDataURI(path string) (string, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%s is %s, not an image", path, mt.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return flow.Media{MIMEType: mt.String(), Data: data}.DataURI(), nil
}

func newOCRCmd(c *cli) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "ocr <image>",
		Short: "Transcribe a photo of handwritten notes into a new note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uri, err := photoDataURI(args[0])
			if err != nil {
				return err
			}
			return c.withEnv(func(e *env) error {
				ctx := cmd.Context()
				svc, err := e.workspace(ctx)
				if err != nil {
					return err
				}
				note, err := svc.ImportHandwriting(ctx, title, uri)
				if err != nil {
					return err
				}
				renderNote(cmd.OutOrStdout(), note)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "title of the new note")
	return cmd
}

func newTestCmd(c *cli) *cobra.Command {
	var (
		src    sourceFlags
		qtype  string
		count  int
		bloom  string
		reveal bool
	)

	cmd := &cobra.Command{
		Use:   "test [note-id]",
		Short: "Generate a practice test",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := src.source(cmd, args)
			if err != nil {
				return err
			}
			questionType, err := parseQuestionType(qtype)
			if err != nil {
				return err
			}
			opts := study.PracticeTestOptions{
				QuestionType:      questionType,
				NumberOfQuestions: count,
				BloomLevel:        flow.BloomLevel(bloom),
			}

			return c.withEnv(func(e *env) error {
				ctx := cmd.Context()
				svc, err := e.workspace(ctx)
				if err != nil {
					return err
				}
				pt, artifact, err := svc.GeneratePracticeTest(ctx, source, opts)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if src.json {
					return writeJSON(out, pt)
				}
				renderPracticeTest(out, pt, reveal)
				fmt.Fprintf(out, "\nSaved as %s\n", artifact.ID)
				return nil
			})
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&qtype, "type", "mcq", "question type: mcq or descriptive")
	cmd.Flags().IntVarP(&count, "questions", "n", 5, "number of questions")
	cmd.Flags().StringVar(&bloom, "bloom", "", "target Bloom level (Remember, Understand, Apply, Analyze, Evaluate, Create)")
	cmd.Flags().BoolVar(&reveal, "reveal", false, "show answers and explanations")

	return cmd
}

func newFlashcardsCmd(c *cli) *cobra.Command {
	var (
		src   sourceFlags
		count int
	)

	cmd := &cobra.Command{
		Use:   "flashcards [note-id]",
		Short: "Generate flashcards",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := src.source(cmd, args)
			if err != nil {
				return err
			}
			var n *int
			if cmd.Flags().Changed("count") {
				n = &count
			}

			return c.withEnv(func(e *env) error {
				ctx := cmd.Context()
				svc, err := e.workspace(ctx)
				if err != nil {
					return err
				}
				cards, artifact, err := svc.GenerateFlashcards(ctx, source, n)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if src.json {
					return writeJSON(out, cards)
				}
				renderFlashcards(out, cards)
				fmt.Fprintf(out, "Saved as %s\n", artifact.ID)
				return nil
			})
		},
	}

	src.register(cmd)
	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of flashcards (default: let the model decide)")

	return cmd
}

func newSummarizeCmd(c *cli) *cobra.Command {
	var (
		src    sourceFlags
		length string
	)

	cmd := &cobra.Command{
		Use:   "summarize [note-id]",
		Short: "Rewrite a note as structured study notes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := src.source(cmd, args)
			if err != nil {
				return err
			}

			return c.withEnv(func(e *env) error {
				ctx := cmd.Context()
				svc, err := e.workspace(ctx)
				if err != nil {
					return err
				}
				notes, artifact, err := svc.SummarizeNote(ctx, source, flow.NoteLength(length))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if src.json {
					return writeJSON(out, notes)
				}
				renderSummary(out, notes)
				fmt.Fprintf(out, "\nSaved as %s\n", artifact.ID)
				return nil
			})
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&length, "length", "", "short, medium or long (default medium)")

	return cmd
}

func newArtifactsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "Browse generated tests, flashcards and summaries",
	}

	var kind string
	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List generated results, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var k *model.ArtifactKind
			if kind != "" {
				parsed, err := parseArtifactKind(kind)
				if err != nil {
					return err
				}
				k = &parsed
			}
			return c.withEnv(func(e *env) error {
				ctx := cmd.Context()
				sess, err := e.current(ctx)
				if err != nil {
					return err
				}
				artifacts, err := e.store.GetArtifacts(ctx, sess.UserID, k)
				if err != nil {
					return err
				}
				renderArtifactList(cmd.OutOrStdout(), artifacts)
				return nil
			})
		},
	}
	list.Flags().StringVar(&kind, "kind", "", "practice_test, flashcards or summary")

	var reveal, asJSON bool
	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a generated result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(func(e *env) error {
				ctx := cmd.Context()
				sess, err := e.current(ctx)
				if err != nil {
					return err
				}
				a, err := e.store.GetArtifactByID(ctx, sess.UserID, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), a.Payload)
					return err
				}
				return renderArtifact(cmd.OutOrStdout(), a, reveal)
			})
		},
	}
	show.Flags().BoolVar(&reveal, "reveal", false, "show answers and explanations")
	show.Flags().BoolVar(&asJSON, "json", false, "print the stored JSON")

	cmd.AddCommand(list, show)
	return cmd
}

func parseArtifactKind(s string) (model.ArtifactKind, error) {
	switch k := model.ArtifactKind(s); k {
	case model.ArtifactPracticeTest, model.ArtifactFlashcards, model.ArtifactSummary:
		return k, nil
	default:
		return "", fmt.Errorf("unknown artifact kind %q", s)
	}
}
