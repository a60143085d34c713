package flow

import "google.golang.org/genai"

func ptr[T any](v T) *T { return &v }

func stringSchema(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func objectSchema(props map[string]*genai.Schema, order []string, required ...string) *genai.Schema {
	return &genai.Schema{
		Type:             genai.TypeObject,
		Properties:       props,
		PropertyOrdering: order,
		Required:         required,
	}
}

func bloomSchema() *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeString,
		Description: "Bloom's Taxonomy level of the question",
		Enum:        bloomStrings(),
	}
}

func ocrSchema(OCRInput) *genai.Schema {
	return objectSchema(map[string]*genai.Schema{
		"extractedText": stringSchema("All text transcribed from the image"),
	}, []string{"extractedText"}, "extractedText")
}

func questionSchema(qt QuestionType) *genai.Schema {
	typ := &genai.Schema{Type: genai.TypeString, Enum: []string{string(qt)}}

	if qt == Descriptive {
		return objectSchema(map[string]*genai.Schema{
			"type":         typ,
			"questionText": stringSchema("The question"),
			"bloomLevel":   bloomSchema(),
		}, []string{"type", "questionText", "bloomLevel"}, "type", "questionText")
	}

	return objectSchema(map[string]*genai.Schema{
		"type":         typ,
		"questionText": stringSchema("The question"),
		"options": {
			Type:     genai.TypeArray,
			Items:    stringSchema("An answer option"),
			MinItems: ptr[int64](2),
		},
		"correctOptionIndex": {
			Type:        genai.TypeInteger,
			Description: "Zero-based index of the correct option",
			Minimum:     ptr(0.0),
		},
		"explanation": stringSchema("Why the correct option is correct"),
		"bloomLevel":  bloomSchema(),
	}, []string{"type", "questionText", "options", "correctOptionIndex", "explanation", "bloomLevel"},
		"type", "questionText", "options", "correctOptionIndex")
}

func practiceTestSchema(in PracticeTestInput) *genai.Schema {
	n := int64(in.NumberOfQuestions)
	return objectSchema(map[string]*genai.Schema{
		"testTitle": stringSchema("A short title for the test"),
		"questions": {
			Type:     genai.TypeArray,
			Items:    questionSchema(in.QuestionType),
			MinItems: ptr(n),
			MaxItems: ptr(n),
		},
	}, []string{"testTitle", "questions"}, "testTitle", "questions")
}

func flashcardsSchema(in FlashcardsInput) *genai.Schema {
	cards := &genai.Schema{
		Type: genai.TypeArray,
		Items: objectSchema(map[string]*genai.Schema{
			"front": stringSchema("Term, question or concept"),
			"back":  stringSchema("Definition or answer"),
		}, []string{"front", "back"}, "front", "back"),
		MinItems: ptr[int64](1),
	}
	if in.NumberOfFlashcards != nil {
		n := int64(*in.NumberOfFlashcards)
		cards.MinItems = ptr(n)
		cards.MaxItems = ptr(n)
	}

	return objectSchema(map[string]*genai.Schema{
		"title":      stringSchema("A short title for the flashcard set"),
		"flashcards": cards,
	}, []string{"title", "flashcards"}, "title", "flashcards")
}

func notesSchema(NotesInput) *genai.Schema {
	return objectSchema(map[string]*genai.Schema{
		"title":        stringSchema("A short title for the notes"),
		"notesContent": stringSchema("The notes in Markdown"),
	}, []string{"title", "notesContent"}, "title", "notesContent")
}
