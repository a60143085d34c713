package flow_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UgochukwuChidera/studio-sub001/internal/flow"
)

type fakeGenerator struct {
	mu       sync.Mutex
	out      string
	err      error
	block    bool
	requests []flow.Request
}

func (f *fakeGenerator) Generate(ctx context.Context, req flow.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.out, f.err
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newRunner(t *testing.T, gen *fakeGenerator, opts ...flow.Option) *flow.Runner {
	t.Helper()
	prompts, err := flow.LoadPrompts("")
	require.NoError(t, err)
	return flow.NewRunner(gen, flow.Readiness{Status: flow.Ready}, prompts, opts...)
}

// fieldNames returns the failing field paths carried by err.
func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var fields []flow.FieldError
	var verr *flow.ValidationError
	var eerr *flow.ExecutionError
	switch {
	case errors.As(err, &verr):
		fields = verr.Fields
	case errors.As(err, &eerr):
		fields = eerr.Fields
	default:
		t.Fatalf("unexpected error type %T: %v", err, err)
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Field
	}
	return names
}

const newtonTest = `{
  "testTitle": "Newton's Laws of Motion",
  "questions": [
    {
      "type": "multipleChoice",
      "questionText": "Which law describes inertia?",
      "options": ["First law", "Second law", "Third law"],
      "correctOptionIndex": 0,
      "explanation": "The first law states that objects keep their state of motion."
    },
    {
      "type": "multipleChoice",
      "questionText": "What does F = ma relate?",
      "options": ["Force, mass and acceleration", "Energy and mass"],
      "correctOptionIndex": 0
    },
    {
      "type": "multipleChoice",
      "questionText": "Every action has an equal and opposite what?",
      "options": ["Force", "Reaction", "Velocity", "Mass"],
      "correctOptionIndex": 1,
      "bloomLevel": "Remember"
    }
  ]
}`

func newtonInput() flow.PracticeTestInput {
	return flow.PracticeTestInput{
		TextContent:       "Newton's laws of motion describe the relationship between force and motion.",
		QuestionType:      flow.MultipleChoice,
		NumberOfQuestions: 3,
	}
}

func TestGeneratePracticeTestMultipleChoice(t *testing.T) {
	gen := &fakeGenerator{out: newtonTest}
	r := newRunner(t, gen)

	got, err := r.GeneratePracticeTest(context.Background(), newtonInput())
	require.NoError(t, err)

	assert.Equal(t, "Newton's Laws of Motion", got.TestTitle)
	require.Len(t, got.Questions, 3)
	for _, q := range got.Questions {
		mcq, ok := q.(*flow.MultipleChoiceQuestion)
		require.True(t, ok, "question %T is not multiple choice", q)
		assert.GreaterOrEqual(t, len(mcq.Options), 2)
		assert.Less(t, mcq.CorrectOptionIndex, len(mcq.Options))
	}
	third := got.Questions[2].(*flow.MultipleChoiceQuestion)
	assert.Equal(t, "Reaction", third.CorrectOption())
	assert.Equal(t, flow.BloomRemember, third.BloomLevel)

	require.Equal(t, 1, gen.calls())
	req := gen.requests[0]
	assert.Equal(t, flow.PromptPracticeTest, req.Prompt)
	assert.Contains(t, req.Text, "Newton's laws of motion")
	assert.Contains(t, req.Text, "exactly 3 multiple-choice questions")
	require.NotNil(t, req.Schema)
	questions := req.Schema.Properties["questions"]
	require.NotNil(t, questions)
	require.NotNil(t, questions.MaxItems)
	assert.Equal(t, int64(3), *questions.MaxItems)
}

func TestGeneratePracticeTestDescriptive(t *testing.T) {
	gen := &fakeGenerator{out: `{
	  "testTitle": "Photosynthesis",
	  "questions": [
	    {"type": "descriptive", "questionText": "Explain the light reactions.", "bloomLevel": "Understand"},
	    {"type": "descriptive", "questionText": "Why do plants need water?"}
	  ]
	}`}
	r := newRunner(t, gen)

	got, err := r.GeneratePracticeTest(context.Background(), flow.PracticeTestInput{
		TextContent:       "Photosynthesis converts light into chemical energy.",
		QuestionType:      flow.Descriptive,
		NumberOfQuestions: 2,
		BloomLevel:        flow.BloomUnderstand,
	})
	require.NoError(t, err)
	require.Len(t, got.Questions, 2)
	for _, q := range got.Questions {
		assert.Equal(t, flow.Descriptive, q.QuestionType())
		_, ok := q.(*flow.DescriptiveQuestion)
		assert.True(t, ok)
	}
	assert.Contains(t, gen.requests[0].Text, `"Understand"`)
}

func TestGeneratePracticeTestRejectsBadOutput(t *testing.T) {
	tests := []struct {
		name      string
		input     flow.PracticeTestInput
		output    string
		wantField string
	}{
		{
			name:  "correct option index out of range",
			input: flow.PracticeTestInput{TextContent: "x", QuestionType: flow.MultipleChoice, NumberOfQuestions: 1},
			output: `{"testTitle": "T", "questions": [
				{"type": "multipleChoice", "questionText": "Q", "options": ["a", "b"], "correctOptionIndex": 2}
			]}`,
			wantField: "questions[0].correctOptionIndex",
		},
		{
			name:  "negative correct option index",
			input: flow.PracticeTestInput{TextContent: "x", QuestionType: flow.MultipleChoice, NumberOfQuestions: 1},
			output: `{"testTitle": "T", "questions": [
				{"type": "multipleChoice", "questionText": "Q", "options": ["a", "b"], "correctOptionIndex": -1}
			]}`,
			wantField: "questions[0].correctOptionIndex",
		},
		{
			name:  "single option",
			input: flow.PracticeTestInput{TextContent: "x", QuestionType: flow.MultipleChoice, NumberOfQuestions: 1},
			output: `{"testTitle": "T", "questions": [
				{"type": "multipleChoice", "questionText": "Q", "options": ["a"], "correctOptionIndex": 0}
			]}`,
			wantField: "questions[0].options",
		},
		{
			name:  "wrong question count",
			input: flow.PracticeTestInput{TextContent: "x", QuestionType: flow.Descriptive, NumberOfQuestions: 2},
			output: `{"testTitle": "T", "questions": [
				{"type": "descriptive", "questionText": "Q"}
			]}`,
			wantField: "questions",
		},
		{
			name:  "descriptive question with correct option index",
			input: flow.PracticeTestInput{TextContent: "x", QuestionType: flow.Descriptive, NumberOfQuestions: 1},
			output: `{"testTitle": "T", "questions": [
				{"type": "descriptive", "questionText": "Q", "correctOptionIndex": 0}
			]}`,
			wantField: "questions[0].correctOptionIndex",
		},
		{
			name:  "descriptive question with options",
			input: flow.PracticeTestInput{TextContent: "x", QuestionType: flow.Descriptive, NumberOfQuestions: 1},
			output: `{"testTitle": "T", "questions": [
				{"type": "descriptive", "questionText": "Q", "options": ["a", "b"]}
			]}`,
			wantField: "questions[0].options",
		},
		{
			name:  "variant does not match question type",
			input: flow.PracticeTestInput{TextContent: "x", QuestionType: flow.Descriptive, NumberOfQuestions: 1},
			output: `{"testTitle": "T", "questions": [
				{"type": "multipleChoice", "questionText": "Q", "options": ["a", "b"], "correctOptionIndex": 0}
			]}`,
			wantField: "questions[0].type",
		},
		{
			name:  "invalid bloom level",
			input: flow.PracticeTestInput{TextContent: "x", QuestionType: flow.Descriptive, NumberOfQuestions: 1},
			output: `{"testTitle": "T", "questions": [
				{"type": "descriptive", "questionText": "Q", "bloomLevel": "Memorize"}
			]}`,
			wantField: "questions[0].bloomLevel",
		},
		{
			name:      "unknown top-level field",
			input:     flow.PracticeTestInput{TextContent: "x", QuestionType: flow.Descriptive, NumberOfQuestions: 1},
			output:    `{"testTitle": "T", "difficulty": "hard", "questions": [{"type": "descriptive", "questionText": "Q"}]}`,
			wantField: "difficulty",
		},
		{
			name:      "blank title",
			input:     flow.PracticeTestInput{TextContent: "x", QuestionType: flow.Descriptive, NumberOfQuestions: 1},
			output:    `{"testTitle": "  ", "questions": [{"type": "descriptive", "questionText": "Q"}]}`,
			wantField: "testTitle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{out: tt.output}
			r := newRunner(t, gen)

			got, err := r.GeneratePracticeTest(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, flow.IsExecution(err))
			assert.False(t, flow.IsValidation(err))
			assert.ErrorIs(t, err, flow.ErrInvalidOutput)
			assert.Contains(t, fieldNames(t, err), tt.wantField)
			assert.Empty(t, got.Questions)
			assert.Equal(t, 1, gen.calls())
		})
	}
}

func TestPracticeTestInputValidation(t *testing.T) {
	tests := []struct {
		name      string
		input     flow.PracticeTestInput
		wantField string
	}{
		{
			name:      "zero questions",
			input:     flow.PracticeTestInput{TextContent: "x", QuestionType: flow.MultipleChoice},
			wantField: "numberOfQuestions",
		},
		{
			name:      "negative questions",
			input:     flow.PracticeTestInput{TextContent: "x", QuestionType: flow.MultipleChoice, NumberOfQuestions: -2},
			wantField: "numberOfQuestions",
		},
		{
			name:      "unknown question type",
			input:     flow.PracticeTestInput{TextContent: "x", QuestionType: "trueFalse", NumberOfQuestions: 1},
			wantField: "questionType",
		},
		{
			name:      "missing question type",
			input:     flow.PracticeTestInput{TextContent: "x", NumberOfQuestions: 1},
			wantField: "questionType",
		},
		{
			name:      "blank text",
			input:     flow.PracticeTestInput{TextContent: " \n\t", QuestionType: flow.MultipleChoice, NumberOfQuestions: 1},
			wantField: "textContent",
		},
		{
			name: "bloom level in wrong case",
			input: flow.PracticeTestInput{
				TextContent: "x", QuestionType: flow.MultipleChoice, NumberOfQuestions: 1, BloomLevel: "remember",
			},
			wantField: "bloomLevel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{out: newtonTest}
			r := newRunner(t, gen)

			_, err := r.GeneratePracticeTest(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, flow.IsValidation(err))
			assert.Contains(t, fieldNames(t, err), tt.wantField)
			assert.Equal(t, 0, gen.calls(), "no request may be issued for invalid input")
		})
	}
}

func TestPracticeTestRoundTrip(t *testing.T) {
	in := flow.PracticeTestInput{TextContent: "x", QuestionType: flow.MultipleChoice, NumberOfQuestions: 2}
	test := flow.PracticeTest{
		TestTitle: "Cells",
		Questions: []flow.Question{
			&flow.MultipleChoiceQuestion{
				QuestionText:       "What is the powerhouse of the cell?",
				Options:            []string{"Nucleus", "Mitochondria"},
				CorrectOptionIndex: 1,
				Explanation:        "Mitochondria produce ATP.",
			},
			&flow.MultipleChoiceQuestion{
				QuestionText:       "Which structure holds DNA?",
				Options:            []string{"Nucleus", "Ribosome", "Membrane"},
				CorrectOptionIndex: 0,
				BloomLevel:         flow.BloomRemember,
			},
		},
	}

	raw, err := json.Marshal(test)
	require.NoError(t, err)

	got, fields := flow.PracticeTestFlow.Decode(in, raw)
	require.Empty(t, fields)
	assert.Equal(t, test, got)

	var stored flow.PracticeTest
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, test, stored)

	mutate := func(t *testing.T, edit func(doc map[string]any)) []flow.FieldError {
		t.Helper()
		var doc map[string]any
		require.NoError(t, json.Unmarshal(raw, &doc))
		edit(doc)
		b, err := json.Marshal(doc)
		require.NoError(t, err)
		_, fields := flow.PracticeTestFlow.Decode(in, b)
		return fields
	}
	firstQuestion := func(doc map[string]any) map[string]any {
		return doc["questions"].([]any)[0].(map[string]any)
	}

	for _, key := range []string{"testTitle", "questions"} {
		t.Run("missing "+key, func(t *testing.T) {
			assert.NotEmpty(t, mutate(t, func(doc map[string]any) { delete(doc, key) }))
		})
		t.Run("null "+key, func(t *testing.T) {
			assert.NotEmpty(t, mutate(t, func(doc map[string]any) { doc[key] = nil }))
		})
	}
	for _, key := range []string{"type", "questionText", "options", "correctOptionIndex"} {
		t.Run("missing question "+key, func(t *testing.T) {
			assert.NotEmpty(t, mutate(t, func(doc map[string]any) { delete(firstQuestion(doc), key) }))
		})
		t.Run("null question "+key, func(t *testing.T) {
			assert.NotEmpty(t, mutate(t, func(doc map[string]any) { firstQuestion(doc)[key] = nil }))
		})
	}
}

func TestGenerateFlashcards(t *testing.T) {
	cards := `{"title": "Capitals", "flashcards": [
		{"front": "France", "back": "Paris"},
		{"front": "Japan", "back": "Tokyo"}
	]}`

	t.Run("any count when unspecified", func(t *testing.T) {
		gen := &fakeGenerator{out: cards}
		got, err := newRunner(t, gen).GenerateFlashcards(context.Background(),
			flow.FlashcardsInput{TextContent: "Capitals of the world"})
		require.NoError(t, err)
		assert.Equal(t, "Capitals", got.Title)
		assert.Equal(t, []flow.Flashcard{{Front: "France", Back: "Paris"}, {Front: "Japan", Back: "Tokyo"}}, got.Flashcards)
		assert.Contains(t, gen.requests[0].Text, "around 10")
	})

	t.Run("exact count when given", func(t *testing.T) {
		n := 2
		gen := &fakeGenerator{out: cards}
		_, err := newRunner(t, gen).GenerateFlashcards(context.Background(),
			flow.FlashcardsInput{TextContent: "Capitals", NumberOfFlashcards: &n})
		require.NoError(t, err)
		assert.Contains(t, gen.requests[0].Text, "exactly 2 flashcards")

		n = 3
		_, err = newRunner(t, gen).GenerateFlashcards(context.Background(),
			flow.FlashcardsInput{TextContent: "Capitals", NumberOfFlashcards: &n})
		require.Error(t, err)
		assert.True(t, flow.IsExecution(err))
		assert.Contains(t, fieldNames(t, err), "flashcards")
	})

	t.Run("empty deck", func(t *testing.T) {
		gen := &fakeGenerator{out: `{"title": "Nothing", "flashcards": []}`}
		_, err := newRunner(t, gen).GenerateFlashcards(context.Background(),
			flow.FlashcardsInput{TextContent: "x"})
		require.Error(t, err)
		assert.Contains(t, fieldNames(t, err), "flashcards")
	})

	t.Run("card missing back", func(t *testing.T) {
		gen := &fakeGenerator{out: `{"title": "T", "flashcards": [{"front": "F"}]}`}
		_, err := newRunner(t, gen).GenerateFlashcards(context.Background(),
			flow.FlashcardsInput{TextContent: "x"})
		require.Error(t, err)
		assert.Contains(t, fieldNames(t, err), "flashcards[0].back")
	})

	t.Run("non-positive count is invalid input", func(t *testing.T) {
		zero := 0
		gen := &fakeGenerator{out: cards}
		_, err := newRunner(t, gen).GenerateFlashcards(context.Background(),
			flow.FlashcardsInput{TextContent: "x", NumberOfFlashcards: &zero})
		require.Error(t, err)
		assert.True(t, flow.IsValidation(err))
		assert.Contains(t, fieldNames(t, err), "numberOfFlashcards")
		assert.Equal(t, 0, gen.calls())
	})
}

func TestGenerateNotes(t *testing.T) {
	gen := &fakeGenerator{out: `{"title": "Cells", "notesContent": "# Cells\n\n- Basic unit of life"}`}
	r := newRunner(t, gen)

	got, err := r.GenerateNotes(context.Background(), flow.NotesInput{TextContent: "Cells are the basic unit of life."})
	require.NoError(t, err)
	assert.Equal(t, flow.Notes{Title: "Cells", NotesContent: "# Cells\n\n- Basic unit of life"}, got)
	assert.Contains(t, gen.requests[0].Text, "as medium notes")

	_, err = r.GenerateNotes(context.Background(), flow.NotesInput{TextContent: "x", NoteLength: flow.NoteShort})
	require.NoError(t, err)
	assert.Contains(t, gen.requests[1].Text, "as short notes")

	_, err = r.GenerateNotes(context.Background(), flow.NotesInput{TextContent: "x", NoteLength: "huge"})
	require.Error(t, err)
	assert.True(t, flow.IsValidation(err))
	assert.Equal(t, 2, gen.calls())

	gen.out = `{"title": "Cells"}`
	_, err = r.GenerateNotes(context.Background(), flow.NotesInput{TextContent: "x"})
	require.Error(t, err)
	assert.Contains(t, fieldNames(t, err), "notesContent")
}

func TestExtractText(t *testing.T) {
	const photo = "data:image/png;base64,aGVsbG8="

	gen := &fakeGenerator{out: `{"extractedText": "F = ma"}`}
	r := newRunner(t, gen)

	got, err := r.ExtractText(context.Background(), flow.OCRInput{PhotoDataURI: photo})
	require.NoError(t, err)
	assert.Equal(t, "F = ma", got.ExtractedText)

	require.Equal(t, 1, gen.calls())
	req := gen.requests[0]
	require.Len(t, req.Media, 1)
	assert.Equal(t, "image/png", req.Media[0].MIMEType)
	assert.Equal(t, []byte("hello"), req.Media[0].Data)
	assert.Equal(t, flow.PromptExtractText, req.Prompt)

	t.Run("empty text is valid", func(t *testing.T) {
		gen.out = `{"extractedText": ""}`
		got, err := r.ExtractText(context.Background(), flow.OCRInput{PhotoDataURI: photo})
		require.NoError(t, err)
		assert.Empty(t, got.ExtractedText)
	})

	t.Run("missing text", func(t *testing.T) {
		gen.out = `{}`
		_, err := r.ExtractText(context.Background(), flow.OCRInput{PhotoDataURI: photo})
		require.Error(t, err)
		assert.Contains(t, fieldNames(t, err), "extractedText")
	})

	t.Run("trailing data", func(t *testing.T) {
		gen.out = `{"extractedText": "a"} {"extractedText": "b"}`
		_, err := r.ExtractText(context.Background(), flow.OCRInput{PhotoDataURI: photo})
		require.Error(t, err)
		assert.True(t, flow.IsExecution(err))
	})

	t.Run("invalid input", func(t *testing.T) {
		before := gen.calls()
		for _, uri := range []string{"", "https://example.com/notes.png", "data:image/png;base64,"} {
			_, err := r.ExtractText(context.Background(), flow.OCRInput{PhotoDataURI: uri})
			require.Error(t, err, uri)
			assert.True(t, flow.IsValidation(err), uri)
		}
		assert.Equal(t, before, gen.calls())
	})
}

func TestRunExecutionFailures(t *testing.T) {
	in := flow.NotesInput{TextContent: "x"}

	t.Run("generator error", func(t *testing.T) {
		boom := errors.New("quota exceeded")
		_, err := newRunner(t, &fakeGenerator{err: boom}).GenerateNotes(context.Background(), in)
		require.Error(t, err)
		assert.True(t, flow.IsExecution(err))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("empty output", func(t *testing.T) {
		_, err := newRunner(t, &fakeGenerator{out: "  "}).GenerateNotes(context.Background(), in)
		assert.ErrorIs(t, err, flow.ErrEmptyOutput)
	})

	t.Run("malformed output", func(t *testing.T) {
		_, err := newRunner(t, &fakeGenerator{out: "Sure! Here are your notes"}).GenerateNotes(context.Background(), in)
		require.Error(t, err)
		assert.True(t, flow.IsExecution(err))
		assert.ErrorIs(t, err, flow.ErrInvalidOutput)
	})

	t.Run("timeout", func(t *testing.T) {
		gen := &fakeGenerator{block: true}
		r := newRunner(t, gen, flow.WithTimeout(10*time.Millisecond))
		_, err := r.GenerateNotes(context.Background(), in)
		require.Error(t, err)
		assert.True(t, flow.IsExecution(err))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestRunnerNotReady(t *testing.T) {
	gen := &fakeGenerator{out: newtonTest}
	r := flow.NewRunner(gen, flow.Readiness{
		Status: flow.MisconfiguredMissingCredential,
		Detail: "GEMINI_API_KEY is not set",
	}, nil)

	_, err := r.GeneratePracticeTest(context.Background(), newtonInput())
	require.Error(t, err)
	assert.True(t, flow.IsExecution(err))
	assert.ErrorIs(t, err, flow.ErrNotReady)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")

	_, err = r.GeneratePracticeTest(context.Background(), flow.PracticeTestInput{})
	assert.True(t, flow.IsValidation(err), "input is still validated first")

	assert.Equal(t, 0, gen.calls())

	nilGen := flow.NewRunner(nil, flow.Readiness{Status: flow.Ready}, nil)
	assert.False(t, nilGen.Readiness().Ready())
	_, err = nilGen.GenerateNotes(context.Background(), flow.NotesInput{TextContent: "x"})
	assert.ErrorIs(t, err, flow.ErrNotReady)
}

func TestRunStateTransitions(t *testing.T) {
	var states []flow.State
	observe := func(_ string, s flow.State) { states = append(states, s) }

	gen := &fakeGenerator{out: `{"title": "T", "notesContent": "body"}`}
	r := newRunner(t, gen, flow.WithObserver(observe))

	_, err := r.GenerateNotes(context.Background(), flow.NotesInput{TextContent: "x"})
	require.NoError(t, err)
	assert.Equal(t, []flow.State{flow.Pending, flow.Validating, flow.Executing, flow.Validated}, states)

	states = nil
	_, err = r.GenerateNotes(context.Background(), flow.NotesInput{})
	require.Error(t, err)
	assert.Equal(t, []flow.State{flow.Pending, flow.Validating, flow.ValidationFailed}, states)

	states = nil
	gen.out = `{"title": "T"}`
	_, err = r.GenerateNotes(context.Background(), flow.NotesInput{TextContent: "x"})
	require.Error(t, err)
	assert.Equal(t, []flow.State{flow.Pending, flow.Validating, flow.Executing, flow.ExecutionFailed}, states)

	for _, s := range states[2:] {
		assert.NotEqual(t, "unknown", s.String())
	}
	assert.True(t, flow.ExecutionFailed.Terminal())
	assert.False(t, flow.Executing.Terminal())
}

func TestRunConcurrent(t *testing.T) {
	gen := &fakeGenerator{out: `{"title": "T", "notesContent": "body"}`}
	r := newRunner(t, gen)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.GenerateNotes(context.Background(), flow.NotesInput{TextContent: "x"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 8, gen.calls())
}
