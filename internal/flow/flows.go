package flow

import (
	"context"
	"strconv"
)

// Prompt references of the built-in flows.
var (
	PromptExtractText  = PromptRef{Name: "extractTextFromImage", Version: 1}
	PromptPracticeTest = PromptRef{Name: "generatePracticeTest", Version: 1}
	PromptFlashcards   = PromptRef{Name: "generateFlashcards", Version: 1}
	PromptNotes        = PromptRef{Name: "generateNotes", Version: 1}
)

// OCRInput is the input of the handwriting OCR flow.
type OCRInput struct {
	// PhotoDataURI is a base64 data URI of the photographed notes.
	PhotoDataURI string `json:"photoDataUri" validate:"required,datauri"`
}

// OCROutput is the text found in the image.
type OCROutput struct {
	ExtractedText string `json:"extractedText"`
}

type ocrWire struct {
	ExtractedText *string `json:"extractedText" validate:"required"`
}

// PracticeTestInput is the input of the practice-test flow.
type PracticeTestInput struct {
	TextContent       string       `json:"textContent" validate:"required,notblank"`
	QuestionType      QuestionType `json:"questionType" validate:"required,oneof=multipleChoice descriptive"`
	NumberOfQuestions int          `json:"numberOfQuestions" validate:"gt=0"`
	BloomLevel        BloomLevel   `json:"bloomLevel,omitempty" validate:"omitempty,bloomlevel"`
}

// FlashcardsInput is the input of the flashcard flow. A nil
// NumberOfFlashcards lets the generator choose.
type FlashcardsInput struct {
	TextContent        string `json:"textContent" validate:"required,notblank"`
	NumberOfFlashcards *int   `json:"numberOfFlashcards,omitempty" validate:"omitempty,gt=0"`
}

// Flashcard is one front/back pair.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Flashcards is the output of the flashcard flow.
type Flashcards struct {
	Title      string      `json:"title"`
	Flashcards []Flashcard `json:"flashcards"`
}

type flashcardWire struct {
	Front *string `json:"front" validate:"required,notblank"`
	Back  *string `json:"back" validate:"required,notblank"`
}

type flashcardsWire struct {
	Title      *string         `json:"title" validate:"required,notblank"`
	Flashcards []flashcardWire `json:"flashcards" validate:"required,min=1,dive"`
}

// NoteLength is the requested length of generated notes.
type NoteLength string

const (
	NoteShort  NoteLength = "short"
	NoteMedium NoteLength = "medium"
	NoteLong   NoteLength = "long"
)

// NotesInput is the input of the notes flow. An empty NoteLength means
// medium.
type NotesInput struct {
	TextContent string     `json:"textContent" validate:"required,notblank"`
	NoteLength  NoteLength `json:"noteLength,omitempty" validate:"omitempty,oneof=short medium long"`
}

// Notes is the output of the notes flow.
type Notes struct {
	Title        string `json:"title"`
	NotesContent string `json:"notesContent"`
}

type notesWire struct {
	Title        *string `json:"title" validate:"required,notblank"`
	NotesContent *string `json:"notesContent" validate:"required,notblank"`
}

// ExtractTextFlow transcribes the text in a photo of notes.
var ExtractTextFlow = Flow[OCRInput, OCROutput]{
	Name:   "extractText",
	Prompt: PromptExtractText,
	Media: func(in OCRInput) ([]Media, error) {
		m, err := ParseDataURI(in.PhotoDataURI)
		if err != nil {
			return nil, err
		}
		return []Media{m}, nil
	},
	Schema: ocrSchema,
	Decode: func(_ OCRInput, raw []byte) (OCROutput, []FieldError) {
		var w ocrWire
		if fields := decodeOutput(raw, &w, ""); len(fields) > 0 {
			return OCROutput{}, fields
		}
		return OCROutput{ExtractedText: *w.ExtractedText}, nil
	},
}

// PracticeTestFlow writes a practice test from notes.
var PracticeTestFlow = Flow[PracticeTestInput, PracticeTest]{
	Name:   "generatePracticeTest",
	Prompt: PromptPracticeTest,
	Vars: func(in PracticeTestInput) map[string]any {
		return map[string]any{
			"textContent":       in.TextContent,
			"questionType":      string(in.QuestionType),
			"numberOfQuestions": in.NumberOfQuestions,
			"bloomLevel":        string(in.BloomLevel),
		}
	},
	Schema: practiceTestSchema,
	Decode: decodePracticeTest,
}

// FlashcardsFlow turns notes into flashcards.
var FlashcardsFlow = Flow[FlashcardsInput, Flashcards]{
	Name:   "generateFlashcards",
	Prompt: PromptFlashcards,
	Vars: func(in FlashcardsInput) map[string]any {
		n := 0
		if in.NumberOfFlashcards != nil {
			n = *in.NumberOfFlashcards
		}
		return map[string]any{
			"textContent":        in.TextContent,
			"numberOfFlashcards": n,
		}
	},
	Schema: flashcardsSchema,
	Decode: func(in FlashcardsInput, raw []byte) (Flashcards, []FieldError) {
		var w flashcardsWire
		if fields := decodeOutput(raw, &w, ""); len(fields) > 0 {
			return Flashcards{}, fields
		}
		if in.NumberOfFlashcards != nil && len(w.Flashcards) != *in.NumberOfFlashcards {
			return Flashcards{}, []FieldError{{
				Field: "flashcards",
				Rule:  "len",
				Param: strconv.Itoa(*in.NumberOfFlashcards),
			}}
		}

		out := Flashcards{Title: *w.Title, Flashcards: make([]Flashcard, len(w.Flashcards))}
		for i, c := range w.Flashcards {
			out.Flashcards[i] = Flashcard{Front: *c.Front, Back: *c.Back}
		}
		return out, nil
	},
}

// NotesFlow rewrites material as structured Markdown notes.
var NotesFlow = Flow[NotesInput, Notes]{
	Name:   "generateNotes",
	Prompt: PromptNotes,
	Vars: func(in NotesInput) map[string]any {
		length := in.NoteLength
		if length == "" {
			length = NoteMedium
		}
		return map[string]any{
			"textContent": in.TextContent,
			"noteLength":  string(length),
		}
	},
	Schema: notesSchema,
	Decode: func(_ NotesInput, raw []byte) (Notes, []FieldError) {
		var w notesWire
		if fields := decodeOutput(raw, &w, ""); len(fields) > 0 {
			return Notes{}, fields
		}
		return Notes{Title: *w.Title, NotesContent: *w.NotesContent}, nil
	},
}

// ExtractText runs ExtractTextFlow.
func (r *Runner) ExtractText(ctx context.Context, in OCRInput) (OCROutput, error) {
	return Run(ctx, r, ExtractTextFlow, in)
}

// GeneratePracticeTest runs PracticeTestFlow.
func (r *Runner) GeneratePracticeTest(ctx context.Context, in PracticeTestInput) (PracticeTest, error) {
	return Run(ctx, r, PracticeTestFlow, in)
}

// GenerateFlashcards runs FlashcardsFlow.
func (r *Runner) GenerateFlashcards(ctx context.Context, in FlashcardsInput) (Flashcards, error) {
	return Run(ctx, r, FlashcardsFlow, in)
}

// GenerateNotes runs NotesFlow.
func (r *Runner) GenerateNotes(ctx context.Context, in NotesInput) (Notes, error) {
	return Run(ctx, r, NotesFlow, in)
}
