// Package app is the root Bubble Tea model of the NoteFlow inbox.
package app

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/UgochukwuChidera/studio-sub001/internal/consent"
	"github.com/UgochukwuChidera/studio-sub001/internal/keys"
	"github.com/UgochukwuChidera/studio-sub001/internal/kv"
	"github.com/UgochukwuChidera/studio-sub001/internal/model"
	"github.com/UgochukwuChidera/studio-sub001/internal/notify"
	"github.com/UgochukwuChidera/studio-sub001/internal/store"
	"github.com/UgochukwuChidera/studio-sub001/internal/study"
	appsync "github.com/UgochukwuChidera/studio-sub001/internal/sync"
	"github.com/UgochukwuChidera/studio-sub001/internal/ui"
	"github.com/UgochukwuChidera/studio-sub001/internal/ui/command"
	"github.com/UgochukwuChidera/studio-sub001/internal/ui/config"
	"github.com/UgochukwuChidera/studio-sub001/internal/ui/detail"
	"github.com/UgochukwuChidera/studio-sub001/internal/ui/generate"
	helpview "github.com/UgochukwuChidera/studio-sub001/internal/ui/help"
	"github.com/UgochukwuChidera/studio-sub001/internal/ui/inbox"
	"github.com/UgochukwuChidera/studio-sub001/internal/ui/noteform"
	"github.com/UgochukwuChidera/studio-sub001/internal/ui/notes"
)

// bannerLines is the height of the consent banner: one line of text
// inside a rounded border.
const bannerLines = 3

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewInbox ViewState = iota
	ViewNotes
	ViewDetail
	ViewHelp
	ViewCommand
	ViewNoteCreate
	ViewNoteEdit
	ViewSettings
	ViewGenerate
)

// Deps are the collaborators of the inbox UI for one signed-in user.
// Poller and Study are optional; the settings view is available when
// Config is set.
type Deps struct {
	Notes      store.NoteStore
	Inbox      *notify.Inbox
	Consent    *consent.Manager
	Study      *study.Service
	Poller     *appsync.Poller
	Config     *model.AppConfig
	ConfigPath string
	Secrets    kv.Store
	Logger     *zap.Logger
}

// Model is the root Bubble Tea model that manages view routing,
// layout, and the consent banner.
type Model struct {
	currentView   ViewState
	previousView  ViewState
	listView      ViewState
	layout        ui.Layout
	keys          *keys.KeyMap
	inboxView     inbox.Model
	notesView     notes.Model
	detail        detail.Model
	helpView      helpview.Model
	commandView   command.Model
	noteForm      noteform.Model
	settingsView  config.Model
	generateView  generate.Model
	hasSettings   bool
	notesStore    store.NoteStore
	notifications *notify.Inbox
	poller        *appsync.Poller
	userID        string
	consent       *consent.Manager
	logger        *zap.Logger
	ready         bool
	banner        bool
	unreadCount   int
	status        string
}

// New creates a new root application model.
func New(d Deps) Model {
	k := keys.DefaultKeyMap()
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := Model{
		currentView:   ViewInbox,
		listView:      ViewInbox,
		layout:        ui.NewLayout(80, 24),
		keys:          k,
		inboxView:     inbox.New(d.Inbox, k, 80, 24),
		notesView:     notes.New(d.Notes, d.Inbox.UserID(), k, 80, 24),
		detail:        detail.New(k, 80, 24),
		helpView:      helpview.New(k, 80, 24),
		commandView:   command.New(80, 24),
		noteForm:      noteform.New(80, 24),
		generateView:  generate.New(d.Study, k, 80, 24),
		notesStore:    d.Notes,
		notifications: d.Inbox,
		poller:        d.Poller,
		userID:        d.Inbox.UserID(),
		consent:       d.Consent,
		logger:        logger,
	}
	if d.Config != nil {
		m.settingsView = config.New(*d.Config, d.ConfigPath, d.Secrets, k, 80, 24)
		m.hasSettings = true
	}
	return m
}

// Init loads the inbox, the notes, the consent state and the unread count,
// and starts the poller when one is set.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.inboxView.Init(),
		m.notesView.Init(),
		m.loadConsent(),
		m.fetchUnreadCount(),
	}
	if m.poller != nil {
		cmds = append(cmds, m.poller.Start())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		m.resize()
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case consentLoadedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.banner = msg.visible
		m.resize()
		return m, nil

	case consentAnsweredMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.banner = false
		m.status = fmt.Sprintf("storage %s", msg.state)
		m.resize()
		return m, nil

	case unreadCountMsg:
		m.unreadCount = msg.count
		return m, nil

	case appsync.ResultMsg:
		if msg.Error != nil {
			m.status = msg.Error.Error()
			return m, m.poller.WaitForNextResult()
		}
		m.unreadCount = msg.Unread
		cmds := []tea.Cmd{m.poller.WaitForNextResult()}
		if msg.New > 0 || msg.Pruned > 0 {
			if msg.New > 0 {
				m.status = fmt.Sprintf("%d new notification(s)", msg.New)
			}
			cmds = append(cmds, m.inboxView.Load())
		}
		return m, tea.Batch(cmds...)

	case inbox.LoadedMsg:
		var cmd tea.Cmd
		m.inboxView, cmd = m.inboxView.Update(msg)
		return m, cmd

	case inbox.ChangedMsg:
		if msg.Err != nil {
			m.status = msg.Err.Error()
		}
		var cmd tea.Cmd
		m.inboxView, cmd = m.inboxView.Update(msg)
		return m, tea.Batch(cmd, m.fetchUnreadCount())

	case inbox.OpenedMsg:
		var cmd tea.Cmd
		m.inboxView, cmd = m.inboxView.Update(msg)
		m.detail.SetNotification(msg.Notification)
		m.previousView = m.currentView
		m.currentView = ViewDetail
		return m, tea.Batch(cmd, m.fetchUnreadCount())

	case notes.LoadedMsg:
		var cmd tea.Cmd
		m.notesView, cmd = m.notesView.Update(msg)
		return m, cmd

	case notes.ChangedMsg:
		if msg.Err != nil {
			m.status = msg.Err.Error()
		}
		var cmd tea.Cmd
		m.notesView, cmd = m.notesView.Update(msg)
		return m, cmd

	case notes.SelectedMsg:
		m.detail.SetNote(msg.Note)
		m.previousView = m.currentView
		m.currentView = ViewDetail
		return m, nil

	case notes.NewMsg:
		m.previousView = m.currentView
		m.currentView = ViewNoteCreate
		return m, m.noteForm.StartCreate()

	case notes.EditMsg:
		return m, m.startEdit(msg.Note)

	case notes.GenerateMsg:
		m.generateView.SetNote(msg.Note)
		m.previousView = m.currentView
		m.currentView = ViewGenerate
		return m, nil

	case generate.CloseMsg:
		m.currentView = m.listView
		return m, nil

	case generate.ResultMsg:
		var cmd tea.Cmd
		m.generateView, cmd = m.generateView.Update(msg)
		// The run left a notification either way.
		return m, tea.Batch(cmd, m.inboxView.Load(), m.fetchUnreadCount())

	case detail.EditMsg:
		return m, m.startEdit(msg.Note)

	case detail.BackMsg:
		m.currentView = m.listView
		return m, nil

	case noteform.CreatedMsg:
		m.currentView = ViewNotes
		m.listView = ViewNotes
		return m, m.createNote(msg.Note)

	case noteform.UpdatedMsg:
		m.currentView = ViewNotes
		m.listView = ViewNotes
		return m, m.updateNote(msg.Note)

	case noteform.CancelMsg:
		m.currentView = m.listView
		return m, nil

	case noteSavedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		} else {
			m.status = "note saved"
		}
		return m, m.notesView.Load()

	case config.DoneMsg:
		m.currentView = m.listView
		return m, nil

	case config.SavedMsg:
		m.status = "settings saved"
		var cmd tea.Cmd
		m.settingsView, cmd = m.settingsView.Update(msg)
		return m, cmd

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(string(msg))

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that work across views. It reports
// whether the key was consumed.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return tea.Quit, true
	}
	// Forms and the palette own every other key.
	if m.inForm() {
		return nil, false
	}

	switch msg.String() {
	case "q":
		if m.inList() {
			return tea.Quit, true
		}

	case "?":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil, true

	case ":":
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m.commandView.Focus(), true

	case "esc":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return nil, true
		}

	case "tab":
		if m.inList() {
			m.switchList()
			return nil, true
		}

	case "y":
		if m.banner && m.currentView == ViewInbox {
			return m.answerConsent(true), true
		}

	case "n":
		if m.banner && m.currentView == ViewInbox {
			return m.answerConsent(false), true
		}
	}

	return nil, false
}

func (m Model) inForm() bool {
	switch m.currentView {
	case ViewCommand, ViewNoteCreate, ViewNoteEdit:
		return true
	case ViewSettings:
		return m.settingsView.Editing()
	default:
		return false
	}
}

func (m Model) inList() bool {
	return m.currentView == ViewInbox || m.currentView == ViewNotes
}

func (m *Model) switchList() {
	if m.currentView == ViewInbox {
		m.currentView = ViewNotes
	} else {
		m.currentView = ViewInbox
	}
	m.listView = m.currentView
}

func (m *Model) startEdit(note model.Note) tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewNoteEdit
	return m.noteForm.StartEdit(note)
}

// resize recomputes the layout after a size or banner change.
func (m *Model) resize() {
	lines := 0
	if m.banner {
		lines = bannerLines
	}
	m.layout = m.layout.WithBanner(lines)

	w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
	m.inboxView.SetSize(w, h)
	m.notesView.SetSize(w, h)
	m.detail.SetSize(w, h)
	m.helpView.SetSize(w, h)
	m.commandView.SetSize(w, h)
	m.noteForm.SetSize(w, h)
	m.settingsView.SetSize(w, h)
	m.generateView.SetSize(w, h)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewInbox:
		m.inboxView, cmd = m.inboxView.Update(msg)
	case ViewNotes:
		m.notesView, cmd = m.notesView.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewNoteCreate, ViewNoteEdit:
		m.noteForm, cmd = m.noteForm.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	case ViewGenerate:
		m.generateView, cmd = m.generateView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	status := "all read"
	if m.unreadCount > 0 {
		status = fmt.Sprintf("%d unread", m.unreadCount)
	}
	header := m.layout.RenderHeader("NoteFlow · "+m.userID, status)

	banner := ""
	if m.banner {
		banner = m.layout.RenderBanner(consent.Notice + "  [y] accept  [n] decline")
	}

	return m.layout.RenderWithFrame(header, banner, m.renderContent(), m.layout.RenderStatusBar(m.keyHints()))
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewInbox:
		return m.inboxView.View()
	case ViewNotes:
		return m.notesView.View()
	case ViewDetail:
		return m.detail.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewNoteCreate, ViewNoteEdit:
		return m.noteForm.View()
	case ViewSettings:
		return m.settingsView.View()
	case ViewGenerate:
		return m.generateView.View()
	default:
		return ""
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.status != "" && m.inList() {
		return m.status
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewDetail:
		if m.detail.ShowingNote() {
			return "esc back | e edit | j/k scroll"
		}
		return "esc back | j/k scroll"
	case ViewNoteCreate, ViewNoteEdit:
		return "enter submit | esc cancel"
	case ViewSettings:
		if m.settingsView.Editing() {
			return "enter next | esc cancel"
		}
		return "e edit | esc back"
	case ViewGenerate:
		if m.generateView.Running() {
			return "generating..."
		}
		return "t test | o open questions | f flashcards | s summary | esc back"
	case ViewNotes:
		return "q quit | tab inbox | n new | e edit | g study tools | d delete | enter open"
	default:
		hints := "q quit | ? help | tab notes | enter open | a read all | d remove | u unread | c category"
		if f := m.inboxView.FilterSummary(); f != "" {
			hints = "[" + f + "] " + hints
		}
		return hints
	}
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	m.status = ""
	name, arg, _ := strings.Cut(strings.ToLower(strings.TrimSpace(cmd)), " ")

	switch name {
	case "inbox":
		m.currentView, m.listView = ViewInbox, ViewInbox
		return nil
	case "notes":
		m.currentView, m.listView = ViewNotes, ViewNotes
		return nil
	case "new":
		if arg == "note" {
			m.previousView = m.currentView
			m.currentView = ViewNoteCreate
			return m.noteForm.StartCreate()
		}
	case "unread":
		return m.inboxView.SetUnreadOnly(true)
	case "all":
		m.inboxView.SetUnreadOnly(false)
		return m.inboxView.SetCategory(nil)
	case "read":
		if arg == "all" {
			return m.inboxView.MarkAllRead()
		}
	case "category":
		if arg == "" || arg == "all" {
			return m.inboxView.SetCategory(nil)
		}
		c, err := model.ParseNotificationCategory(arg)
		if err != nil {
			m.status = err.Error()
			return nil
		}
		return m.inboxView.SetCategory(&c)
	case "settings", "config":
		if !m.hasSettings {
			m.status = "settings are not available"
			return nil
		}
		m.previousView = m.currentView
		m.currentView = ViewSettings
		return nil
	case "accept":
		return m.answerConsent(true)
	case "decline":
		return m.answerConsent(false)
	case "refresh":
		if m.poller != nil {
			m.poller.Refresh()
		}
		return tea.Batch(m.inboxView.Load(), m.notesView.Load(), m.fetchUnreadCount())
	case "quit", "q":
		return tea.Quit
	}

	m.status = fmt.Sprintf("unknown command %q", cmd)
	return nil
}
