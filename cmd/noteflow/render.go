package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/UgochukwuChidera/studio-sub001/internal/flow"
	"github.com/UgochukwuChidera/studio-sub001/internal/model"
	"github.com/UgochukwuChidera/studio-sub001/internal/theme"
)

const timeLayout = "2006-01-02 15:04"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
	labelStyle = lipgloss.NewStyle().Foreground(theme.ColorGray)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorBorder)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func renderNoteList(w io.Writer, notes []model.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(w, "No notes yet. Add one with 'noteflow note add'.")
		return
	}
	t := newTable("ID", "TITLE", "UPDATED")
	for _, n := range notes {
		t.Row(n.ID, n.Title, n.UpdatedAt.Local().Format(timeLayout))
	}
	fmt.Fprintln(w, t.Render())
}

func renderNote(w io.Writer, n *model.Note) {
	fmt.Fprintln(w, titleStyle.Render(n.Title))
	fmt.Fprintln(w, labelStyle.Render(fmt.Sprintf("%s · updated %s", n.ID, n.UpdatedAt.Local().Format(timeLayout))))
	fmt.Fprintln(w)
	fmt.Fprintln(w, n.Content)
}

func renderNotificationList(w io.Writer, notifications []model.Notification) {
	if len(notifications) == 0 {
		fmt.Fprintln(w, "No notifications.")
		return
	}
	t := newTable("", "ID", "CATEGORY", "TITLE", "DATE")
	for _, n := range notifications {
		marker := " "
		if !n.Read {
			marker = "●"
		}
		t.Row(marker, n.ID, theme.CategoryLabel(n.Category), n.Title, n.Date.Local().Format(timeLayout))
	}
	fmt.Fprintln(w, t.Render())
}

func renderNotification(w io.Writer, n *model.Notification) {
	fmt.Fprintf(w, "%s %s\n",
		theme.CategoryStyle(n.Category).Render(theme.CategoryLabel(n.Category)),
		titleStyle.Render(n.Title))
	state := "unread"
	if n.Read {
		state = "read"
	}
	fmt.Fprintln(w, labelStyle.Render(fmt.Sprintf("%s · %s · %s", n.ID, n.Date.Local().Format(time.RFC1123), state)))
	if n.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, n.Description)
	}
	if n.Navigable() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, labelStyle.Render("Open: ")+n.Href)
	}
}

func renderArtifactList(w io.Writer, artifacts []model.Artifact) {
	if len(artifacts) == 0 {
		fmt.Fprintln(w, "Nothing generated yet.")
		return
	}
	t := newTable("ID", "KIND", "TITLE", "CREATED")
	for _, a := range artifacts {
		t.Row(a.ID, string(a.Kind), a.Title, a.CreatedAt.Local().Format(timeLayout))
	}
	fmt.Fprintln(w, t.Render())
}

// renderArtifact decodes a stored payload and renders it like a fresh
// result.
func renderArtifact(w io.Writer, a *model.Artifact, reveal bool) error {
	switch a.Kind {
	case model.ArtifactPracticeTest:
		var pt flow.PracticeTest
		if err := json.Unmarshal([]byte(a.Payload), &pt); err != nil {
			return fmt.Errorf("decoding practice test %s: %w", a.ID, err)
		}
		renderPracticeTest(w, pt, reveal)
	case model.ArtifactFlashcards:
		var fc flow.Flashcards
		if err := json.Unmarshal([]byte(a.Payload), &fc); err != nil {
			return fmt.Errorf("decoding flashcards %s: %w", a.ID, err)
		}
		renderFlashcards(w, fc)
	case model.ArtifactSummary:
		var notes flow.Notes
		if err := json.Unmarshal([]byte(a.Payload), &notes); err != nil {
			return fmt.Errorf("decoding summary %s: %w", a.ID, err)
		}
		renderSummary(w, notes)
	default:
		return fmt.Errorf("artifact %s has unknown kind %q", a.ID, a.Kind)
	}
	return nil
}

// renderPracticeTest prints the questions; reveal adds answers and
// explanations.
func renderPracticeTest(w io.Writer, pt flow.PracticeTest, reveal bool) {
	fmt.Fprintln(w, titleStyle.Render(pt.TestTitle))
	for i, q := range pt.Questions {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%d. %s", i+1, q.Text())
		switch q := q.(type) {
		case *flow.MultipleChoiceQuestion:
			fmt.Fprintln(w, bloomSuffix(q.BloomLevel))
			for j, opt := range q.Options {
				line := fmt.Sprintf("   %c) %s", 'a'+rune(j), opt)
				if reveal && j == q.CorrectOptionIndex {
					line = theme.SuccessStyle.Render(line + "  ✓")
				}
				fmt.Fprintln(w, line)
			}
			if reveal && q.Explanation != "" {
				fmt.Fprintln(w, labelStyle.Render("   "+q.Explanation))
			}
		case *flow.DescriptiveQuestion:
			fmt.Fprintln(w, bloomSuffix(q.BloomLevel))
		}
	}
}

func bloomSuffix(b flow.BloomLevel) string {
	if b == "" {
		return ""
	}
	return labelStyle.Render(" [" + string(b) + "]")
}

func renderFlashcards(w io.Writer, fc flow.Flashcards) {
	fmt.Fprintln(w, titleStyle.Render(fc.Title))
	t := newTable("#", "FRONT", "BACK")
	for i, card := range fc.Flashcards {
		t.Row(fmt.Sprint(i+1), card.Front, card.Back)
	}
	fmt.Fprintln(w, t.Render())
}

func renderSummary(w io.Writer, notes flow.Notes) {
	fmt.Fprintln(w, titleStyle.Render(notes.Title))
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.TrimSpace(notes.NotesContent))
}
