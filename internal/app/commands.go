package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/UgochukwuChidera/studio-sub001/internal/consent"
	"github.com/UgochukwuChidera/studio-sub001/internal/model"
)

// unreadCountMsg carries the number of unread notifications to the UI.
type unreadCountMsg struct {
	count int
}

// consentLoadedMsg reports whether the consent banner should be shown.
type consentLoadedMsg struct {
	visible bool
	err     error
}

// consentAnsweredMsg is sent after the banner was answered.
type consentAnsweredMsg struct {
	state consent.State
	err   error
}

// noteSavedMsg is sent after a note is created or updated.
type noteSavedMsg struct{ err error }

// fetchUnreadCount returns a tea.Cmd that counts unread notifications.
func (m Model) fetchUnreadCount() tea.Cmd {
	in, logger := m.notifications, m.logger
	return func() tea.Msg {
		n, err := in.UnreadCount(context.Background())
		if err != nil {
			logger.Warn("counting unread notifications", zap.Error(err))
			return unreadCountMsg{count: 0}
		}
		return unreadCountMsg{count: n}
	}
}

// loadConsent reads the stored consent decision.
func (m Model) loadConsent() tea.Cmd {
	c := m.consent
	return func() tea.Msg {
		visible, err := c.BannerVisible(context.Background())
		return consentLoadedMsg{visible: visible, err: err}
	}
}

// answerConsent stores the banner answer.
func (m Model) answerConsent(accept bool) tea.Cmd {
	c := m.consent
	return func() tea.Msg {
		ctx := context.Background()
		if accept {
			return consentAnsweredMsg{state: consent.Accepted, err: c.Accept(ctx)}
		}
		return consentAnsweredMsg{state: consent.Declined, err: c.Decline(ctx)}
	}
}

// createNote persists a new note for the signed-in user.
func (m Model) createNote(note model.Note) tea.Cmd {
	s, userID := m.notesStore, m.userID
	return func() tea.Msg {
		note.UserID = userID
		_, err := s.CreateNote(context.Background(), note)
		return noteSavedMsg{err: err}
	}
}

// updateNote persists an edited note.
func (m Model) updateNote(note model.Note) tea.Cmd {
	s, userID := m.notesStore, m.userID
	return func() tea.Msg {
		note.UserID = userID
		return noteSavedMsg{err: s.UpdateNote(context.Background(), note)}
	}
}
