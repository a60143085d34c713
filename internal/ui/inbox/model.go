// Package inbox is the notification list view.
package inbox

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/UgochukwuChidera/studio-sub001/internal/keys"
	"github.com/UgochukwuChidera/studio-sub001/internal/model"
	"github.com/UgochukwuChidera/studio-sub001/internal/notify"
	"github.com/UgochukwuChidera/studio-sub001/internal/theme"
)

// LoadedMsg is sent when notifications have been loaded.
type LoadedMsg struct {
	Notifications []model.Notification
	Err           error
}

// OpenedMsg is sent after a notification was selected and marked read.
type OpenedMsg struct {
	Notification model.Notification
}

// ChangedMsg is sent after a mutation of the inbox. The list reloads on
// receipt.
type ChangedMsg struct {
	Err error
}

// Model is the notification list view component.
type Model struct {
	list     list.Model
	inbox    *notify.Inbox
	keys     *keys.KeyMap
	filter   notify.Filter
	category int // index into model.NotificationCategories, -1 for all
	err      error
	width    int
	height   int
}

// New creates a new inbox view over in.
func New(in *notify.Inbox, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Notifications"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:     l,
		inbox:    in,
		keys:     k,
		category: -1,
		width:    width,
		height:   height,
	}
}

// Init returns a command that loads the notifications.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Update handles messages for the inbox view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.err = msg.Err
		items := make([]list.Item, len(msg.Notifications))
		for i, n := range msg.Notifications {
			items[i] = Item{Notification: n}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case ChangedMsg:
		m.err = msg.Err
		return m, m.Load()

	case OpenedMsg:
		return m, m.Load()

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		n, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, m.open(n)

	case key.Matches(msg, m.keys.MarkAllRead):
		return m, m.MarkAllRead()

	case key.Matches(msg, m.keys.Remove):
		n, ok := m.Selected()
		if !ok {
			return m, nil
		}
		in := m.inbox
		return m, m.mutate(func(ctx context.Context) error {
			return in.Remove(ctx, n.ID)
		})

	case key.Matches(msg, m.keys.ToggleUnread):
		m.filter.UnreadOnly = !m.filter.UnreadOnly
		return m, m.Load()

	case key.Matches(msg, m.keys.CycleCategory):
		m.cycleCategory()
		return m, m.Load()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.Load()
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// cycleCategory steps through all categories, then back to no filter.
func (m *Model) cycleCategory() {
	m.category++
	if m.category >= len(model.NotificationCategories) {
		m.category = -1
		m.filter.Category = nil
		return
	}
	c := model.NotificationCategories[m.category]
	m.filter.Category = &c
}

// SetCategory filters by c, or clears the category filter when c is nil.
func (m *Model) SetCategory(c *model.NotificationCategory) tea.Cmd {
	m.category = -1
	m.filter.Category = nil
	if c != nil {
		for i, known := range model.NotificationCategories {
			if known == *c {
				m.category = i
				cat := known
				m.filter.Category = &cat
			}
		}
	}
	return m.Load()
}

// SetUnreadOnly toggles the unread filter explicitly.
func (m *Model) SetUnreadOnly(on bool) tea.Cmd {
	m.filter.UnreadOnly = on
	return m.Load()
}

func (m Model) open(n model.Notification) tea.Cmd {
	in := m.inbox
	return func() tea.Msg {
		if err := in.MarkRead(context.Background(), n.ID); err != nil {
			return ChangedMsg{Err: err}
		}
		n.Read = true
		return OpenedMsg{Notification: n}
	}
}

// MarkAllRead returns a tea.Cmd that marks every notification read.
func (m Model) MarkAllRead() tea.Cmd {
	in := m.inbox
	return m.mutate(func(ctx context.Context) error {
		return in.MarkAllRead(ctx)
	})
}

func (m Model) mutate(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return ChangedMsg{Err: fn(context.Background())}
	}
}

// Load returns a tea.Cmd that queries the inbox with the current filter.
func (m Model) Load() tea.Cmd {
	filter := m.filter
	in := m.inbox
	return func() tea.Msg {
		found, err := in.Find(context.Background(), filter)
		return LoadedMsg{Notifications: found, Err: err}
	}
}

// Selected returns the focused notification.
func (m Model) Selected() (model.Notification, bool) {
	it, ok := m.list.SelectedItem().(Item)
	if !ok {
		return model.Notification{}, false
	}
	return it.Notification, true
}

// Notifications returns the notifications currently listed.
func (m Model) Notifications() []model.Notification {
	items := m.list.Items()
	out := make([]model.Notification, 0, len(items))
	for _, it := range items {
		if n, ok := it.(Item); ok {
			out = append(out, n.Notification)
		}
	}
	return out
}

// Err returns the last load or mutation error.
func (m Model) Err() error {
	return m.err
}

// FilterSummary describes the active filters, or "" when none are set.
func (m Model) FilterSummary() string {
	var parts []string
	if m.filter.UnreadOnly {
		parts = append(parts, "unread")
	}
	if m.filter.Category != nil {
		parts = append(parts, string(*m.filter.Category))
	}
	return strings.Join(parts, " · ")
}

// View renders the inbox.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}
	return m.list.View()
}

func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.FilterSummary() != "" {
		return style.Render("No matching notifications.\nPress u or c to change the filter.")
	}
	return style.Render("You're all caught up.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
