package flow

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// QuestionType selects the question variant a practice test contains.
type QuestionType string

const (
	MultipleChoice QuestionType = "multipleChoice"
	Descriptive    QuestionType = "descriptive"
)

// BloomLevel is a cognitive-complexity level from Bloom's Taxonomy.
type BloomLevel string

const (
	BloomRemember   BloomLevel = "Remember"
	BloomUnderstand BloomLevel = "Understand"
	BloomApply      BloomLevel = "Apply"
	BloomAnalyze    BloomLevel = "Analyze"
	BloomEvaluate   BloomLevel = "Evaluate"
	BloomCreate     BloomLevel = "Create"
)

// BloomLevels lists every level, lowest first.
var BloomLevels = []BloomLevel{
	BloomRemember, BloomUnderstand, BloomApply,
	BloomAnalyze, BloomEvaluate, BloomCreate,
}

// Valid reports whether b is one of BloomLevels.
func (b BloomLevel) Valid() bool {
	for _, l := range BloomLevels {
		if b == l {
			return true
		}
	}
	return false
}

func bloomStrings() []string {
	out := make([]string, len(BloomLevels))
	for i, l := range BloomLevels {
		out[i] = string(l)
	}
	return out
}

// Question is one practice-test question: either a
// *MultipleChoiceQuestion or a *DescriptiveQuestion.
type Question interface {
	QuestionType() QuestionType
	Text() string
	isQuestion()
}

// MultipleChoiceQuestion has options and exactly one correct option.
type MultipleChoiceQuestion struct {
	QuestionText       string
	Options            []string
	CorrectOptionIndex int
	Explanation        string
	BloomLevel         BloomLevel
}

func (*MultipleChoiceQuestion) QuestionType() QuestionType { return MultipleChoice }
func (q *MultipleChoiceQuestion) Text() string             { return q.QuestionText }
func (*MultipleChoiceQuestion) isQuestion()                {}

// CorrectOption returns the text of the correct option.
func (q *MultipleChoiceQuestion) CorrectOption() string {
	return q.Options[q.CorrectOptionIndex]
}

func (q *MultipleChoiceQuestion) MarshalJSON() ([]byte, error) {
	return json.Marshal(mcqJSON{
		Type:               MultipleChoice,
		QuestionText:       q.QuestionText,
		Options:            q.Options,
		CorrectOptionIndex: q.CorrectOptionIndex,
		Explanation:        q.Explanation,
		BloomLevel:         q.BloomLevel,
	})
}

// DescriptiveQuestion is answered in free text.
type DescriptiveQuestion struct {
	QuestionText string
	BloomLevel   BloomLevel
}

func (*DescriptiveQuestion) QuestionType() QuestionType { return Descriptive }
func (q *DescriptiveQuestion) Text() string             { return q.QuestionText }
func (*DescriptiveQuestion) isQuestion()                {}

func (q *DescriptiveQuestion) MarshalJSON() ([]byte, error) {
	return json.Marshal(descriptiveJSON{
		Type:         Descriptive,
		QuestionText: q.QuestionText,
		BloomLevel:   q.BloomLevel,
	})
}

type mcqJSON struct {
	Type               QuestionType `json:"type"`
	QuestionText       string       `json:"questionText"`
	Options            []string     `json:"options"`
	CorrectOptionIndex int          `json:"correctOptionIndex"`
	Explanation        string       `json:"explanation,omitempty"`
	BloomLevel         BloomLevel   `json:"bloomLevel,omitempty"`
}

type descriptiveJSON struct {
	Type         QuestionType `json:"type"`
	QuestionText string       `json:"questionText"`
	BloomLevel   BloomLevel   `json:"bloomLevel,omitempty"`
}

// PracticeTest is the output of the practice-test flow.
type PracticeTest struct {
	TestTitle string     `json:"testTitle"`
	Questions []Question `json:"questions"`
}

// UnmarshalJSON decodes a stored practice test. Each question's variant
// is taken from its type field.
func (t *PracticeTest) UnmarshalJSON(data []byte) error {
	var raw struct {
		TestTitle string            `json:"testTitle"`
		Questions []json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	questions := make([]Question, 0, len(raw.Questions))
	for i, rq := range raw.Questions {
		var probe struct {
			Type QuestionType `json:"type"`
		}
		if err := json.Unmarshal(rq, &probe); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}

		switch probe.Type {
		case MultipleChoice:
			var q mcqJSON
			if err := json.Unmarshal(rq, &q); err != nil {
				return fmt.Errorf("question %d: %w", i, err)
			}
			questions = append(questions, &MultipleChoiceQuestion{
				QuestionText:       q.QuestionText,
				Options:            q.Options,
				CorrectOptionIndex: q.CorrectOptionIndex,
				Explanation:        q.Explanation,
				BloomLevel:         q.BloomLevel,
			})
		case Descriptive:
			var q descriptiveJSON
			if err := json.Unmarshal(rq, &q); err != nil {
				return fmt.Errorf("question %d: %w", i, err)
			}
			questions = append(questions, &DescriptiveQuestion{
				QuestionText: q.QuestionText,
				BloomLevel:   q.BloomLevel,
			})
		default:
			return fmt.Errorf("question %d: unknown type %q", i, probe.Type)
		}
	}

	t.TestTitle = raw.TestTitle
	t.Questions = questions
	return nil
}

// Wire forms of generator output. Pointers distinguish a missing field
// from a zero value.

type questionProbe struct {
	Type *string `json:"type"`
}

type mcqWire struct {
	Type               *string  `json:"type" validate:"required"`
	QuestionText       *string  `json:"questionText" validate:"required,notblank"`
	Options            []string `json:"options" validate:"required,min=2,dive,notblank"`
	CorrectOptionIndex *int     `json:"correctOptionIndex" validate:"required,gte=0"`
	Explanation        *string  `json:"explanation"`
	BloomLevel         *string  `json:"bloomLevel" validate:"omitempty,bloomlevel"`
}

type descriptiveWire struct {
	Type         *string `json:"type" validate:"required"`
	QuestionText *string `json:"questionText" validate:"required,notblank"`
	BloomLevel   *string `json:"bloomLevel" validate:"omitempty,bloomlevel"`
}

type practiceTestWire struct {
	TestTitle *string           `json:"testTitle" validate:"required,notblank"`
	Questions []json.RawMessage `json:"questions" validate:"required"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// decodePracticeTest validates raw generator output against the
// practice-test schema for in.
func decodePracticeTest(in PracticeTestInput, raw []byte) (PracticeTest, []FieldError) {
	var w practiceTestWire
	if fields := decodeOutput(raw, &w, ""); len(fields) > 0 {
		return PracticeTest{}, fields
	}

	var fields []FieldError
	if len(w.Questions) != in.NumberOfQuestions {
		fields = append(fields, FieldError{
			Field: "questions",
			Rule:  "len",
			Param: strconv.Itoa(in.NumberOfQuestions),
		})
	}

	questions := make([]Question, 0, len(w.Questions))
	for i, rq := range w.Questions {
		prefix := fmt.Sprintf("questions[%d]", i)

		var probe questionProbe
		if err := json.Unmarshal(rq, &probe); err != nil {
			fields = append(fields, decodeFields(err, prefix)...)
			continue
		}
		if probe.Type == nil || QuestionType(*probe.Type) != in.QuestionType {
			fields = append(fields, FieldError{
				Field: prefix + ".type",
				Rule:  "eq",
				Param: string(in.QuestionType),
			})
			continue
		}

		switch in.QuestionType {
		case MultipleChoice:
			var q mcqWire
			if fe := decodeOutput(rq, &q, prefix); len(fe) > 0 {
				fields = append(fields, fe...)
				continue
			}
			questions = append(questions, &MultipleChoiceQuestion{
				QuestionText:       *q.QuestionText,
				Options:            q.Options,
				CorrectOptionIndex: *q.CorrectOptionIndex,
				Explanation:        deref(q.Explanation),
				BloomLevel:         BloomLevel(deref(q.BloomLevel)),
			})
		case Descriptive:
			var q descriptiveWire
			if fe := decodeOutput(rq, &q, prefix); len(fe) > 0 {
				fields = append(fields, fe...)
				continue
			}
			questions = append(questions, &DescriptiveQuestion{
				QuestionText: *q.QuestionText,
				BloomLevel:   BloomLevel(deref(q.BloomLevel)),
			})
		}
	}

	if len(fields) > 0 {
		return PracticeTest{}, fields
	}
	return PracticeTest{TestTitle: *w.TestTitle, Questions: questions}, nil
}
