package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UgochukwuChidera/studio-sub001/internal/consent"
	"github.com/UgochukwuChidera/studio-sub001/internal/flow"
	"github.com/UgochukwuChidera/studio-sub001/internal/kv"
	"github.com/UgochukwuChidera/studio-sub001/internal/model"
	"github.com/UgochukwuChidera/studio-sub001/internal/notify"
	"github.com/UgochukwuChidera/studio-sub001/internal/study"
	appsync "github.com/UgochukwuChidera/studio-sub001/internal/sync"
	"github.com/UgochukwuChidera/studio-sub001/internal/ui/command"
	"github.com/UgochukwuChidera/studio-sub001/internal/ui/noteform"
	"github.com/UgochukwuChidera/studio-sub001/tests/testutil"
)

var base = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type summaryGenerator struct{}

func (summaryGenerator) Generate(context.Context, flow.Request) (string, error) {
	return `{"title": "Optics", "notesContent": "- light bends"}`, nil
}

type fixture struct {
	inbox   *notify.Inbox
	consent *consent.Manager
	deps    Deps
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	s := testutil.NewTestStore(t)
	in := notify.NewCenter(s).Inbox("user-1")
	cm := consent.NewManager(kv.NewMemory(), consent.CurrentVersion, nil)
	runner := flow.NewRunner(summaryGenerator{}, flow.Readiness{Status: flow.Ready}, nil)
	return fixture{
		inbox:   in,
		consent: cm,
		deps: Deps{
			Notes:   s,
			Inbox:   in,
			Consent: cm,
			Study:   study.New(s, runner, in, nil),
		},
	}
}

func (f fixture) seed(t *testing.T) {
	t.Helper()
	for i, n := range []model.Notification{
		{Title: "Welcome", Category: model.CategorySystem},
		{Title: "Practice test ready", Category: model.CategoryTestActivity, Href: "/tests/t1"},
	} {
		n.Date = base.Add(time.Duration(i) * time.Minute)
		_, err := f.inbox.Add(context.Background(), n)
		require.NoError(t, err)
	}
}

// feed sends msg to m and runs every resulting command to completion,
// expanding batches.
func feed(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	return drain(t, m, cmd)
}

func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 100, "command chain did not settle")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		next, cmd := m.Update(msg)
		m = next.(Model)
		queue = append(queue, cmd)
	}
	return m
}

func start(t *testing.T, f fixture) Model {
	t.Helper()
	m := New(f.deps)
	m = drain(t, m, m.Init())
	return feed(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModel_ConsentBannerAccept(t *testing.T) {
	f := newFixture(t)
	m := start(t, f)

	require.True(t, m.banner)
	assert.Contains(t, m.View(), consent.Notice)
	assert.Equal(t, 30-1-1-bannerLines, m.layout.ContentHeight())

	m = feed(t, m, runeKey('y'))
	assert.False(t, m.banner)
	assert.NotContains(t, m.View(), consent.Notice)
	assert.Equal(t, 28, m.layout.ContentHeight())

	state, err := f.consent.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, consent.Accepted, state)
}

func TestModel_ConsentBannerDecline(t *testing.T) {
	f := newFixture(t)
	m := start(t, f)

	m = feed(t, m, runeKey('n'))
	assert.False(t, m.banner)

	state, err := f.consent.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, consent.Declined, state)
}

func TestModel_BannerHiddenOnceAnswered(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.consent.Decline(context.Background()))

	m := start(t, f)
	assert.False(t, m.banner)

	// Without a banner y/n fall through to the inbox.
	m = feed(t, m, runeKey('y'))
	state, err := f.consent.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, consent.Declined, state)
}

func TestModel_OpenMarksReadAndUpdatesCount(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	m := start(t, f)

	assert.Equal(t, 2, m.unreadCount)
	assert.Contains(t, m.View(), "2 unread")

	m = feed(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ViewDetail, m.currentView)
	assert.Equal(t, 1, m.unreadCount)
	assert.Contains(t, m.View(), "Practice test ready")
	assert.Contains(t, m.View(), "/tests/t1")

	m = feed(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewInbox, m.currentView)

	m = feed(t, m, runeKey('a'))
	assert.Equal(t, 0, m.unreadCount)
	assert.Contains(t, m.View(), "all read")
}

func TestModel_RemoveNotification(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	m := start(t, f)

	m = feed(t, m, runeKey('d'))
	list, err := f.inbox.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Welcome", list[0].Title)
	assert.Equal(t, 1, m.unreadCount)
}

func TestModel_NotesCreateAndOpen(t *testing.T) {
	f := newFixture(t)
	m := start(t, f)

	m = feed(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, ViewNotes, m.currentView)
	assert.Contains(t, m.View(), "No notes yet")

	m = feed(t, m, noteform.CreatedMsg{Note: model.Note{Title: "Optics", Content: "Snell's law"}})
	require.Len(t, m.notesView.Notes(), 1)
	assert.Equal(t, "user-1", m.notesView.Notes()[0].UserID)
	assert.Equal(t, "note saved", m.status)

	m = feed(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ViewDetail, m.currentView)
	assert.Contains(t, m.View(), "Snell's law")

	m = feed(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewNotes, m.currentView)

	note := m.notesView.Notes()[0]
	note.Content = "Total internal reflection"
	m = feed(t, m, noteform.UpdatedMsg{Note: note})
	assert.Equal(t, "Total internal reflection", m.notesView.Notes()[0].Content)
}

func TestModel_Commands(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	m := start(t, f)

	m = feed(t, m, command.CommandMsg("category test_activity"))
	require.Len(t, m.inboxView.Notifications(), 1)
	assert.Equal(t, "Practice test ready", m.inboxView.Notifications()[0].Title)

	m = feed(t, m, command.CommandMsg("category all"))
	assert.Len(t, m.inboxView.Notifications(), 2)

	m = feed(t, m, command.CommandMsg("category promo"))
	assert.Contains(t, m.status, "promo")

	m = feed(t, m, command.CommandMsg("read all"))
	assert.Equal(t, 0, m.unreadCount)

	m = feed(t, m, command.CommandMsg("unread"))
	assert.Empty(t, m.inboxView.Notifications())

	m = feed(t, m, command.CommandMsg("all"))
	assert.Len(t, m.inboxView.Notifications(), 2)

	m = feed(t, m, command.CommandMsg("notes"))
	assert.Equal(t, ViewNotes, m.currentView)

	m = feed(t, m, command.CommandMsg("decline"))
	assert.False(t, m.banner)

	m = feed(t, m, command.CommandMsg("frobnicate"))
	assert.Contains(t, m.status, "unknown command")
}

func TestModel_HelpToggleAndQuit(t *testing.T) {
	f := newFixture(t)
	m := start(t, f)

	m = feed(t, m, runeKey('?'))
	assert.Equal(t, ViewHelp, m.currentView)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m = feed(t, m, runeKey('?'))
	assert.Equal(t, ViewInbox, m.currentView)

	_, cmd := m.Update(runeKey('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_PollResultUpdatesCount(t *testing.T) {
	f := newFixture(t)
	m := start(t, f)
	// Set after start so Init does not launch the polling goroutine.
	m.poller = appsync.New(f.inbox)

	next, cmd := m.Update(appsync.ResultMsg{Unread: 3, New: 2})
	m = next.(Model)
	assert.NotNil(t, cmd)
	assert.Equal(t, 3, m.unreadCount)
	assert.Equal(t, "2 new notification(s)", m.status)
	assert.Contains(t, m.View(), "3 unread")

	next, _ = m.Update(appsync.ResultMsg{Error: assert.AnError})
	m = next.(Model)
	assert.Equal(t, assert.AnError.Error(), m.status)
	assert.Equal(t, 3, m.unreadCount)
}

func TestModel_Settings(t *testing.T) {
	f := newFixture(t)
	m := start(t, f)

	m = feed(t, m, command.CommandMsg("settings"))
	assert.Equal(t, ViewInbox, m.currentView)
	assert.Equal(t, "settings are not available", m.status)

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := model.LoadConfig(path)
	require.NoError(t, err)
	f.deps.Config = cfg
	f.deps.ConfigPath = path
	f.deps.Secrets = kv.NewMemory()
	m = start(t, f)

	m = feed(t, m, command.CommandMsg("settings"))
	require.Equal(t, ViewSettings, m.currentView)
	assert.Contains(t, m.View(), cfg.AI.Model)
	assert.Contains(t, m.View(), path)

	m = feed(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewInbox, m.currentView)
}

func TestModel_StudyToolsFromNote(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.consent.Accept(context.Background()))
	m := start(t, f)

	m = feed(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = feed(t, m, noteform.CreatedMsg{Note: model.Note{Title: "Optics", Content: "Light refracts."}})
	assert.Equal(t, 0, m.unreadCount)

	m = feed(t, m, runeKey('g'))
	require.Equal(t, ViewGenerate, m.currentView)
	assert.Contains(t, m.View(), "Study tools · Optics")

	m = feed(t, m, runeKey('s'))
	assert.Contains(t, m.View(), "light bends")
	assert.Equal(t, 1, m.unreadCount)
	require.Len(t, m.inboxView.Notifications(), 1)
	assert.Equal(t, model.CategoryTestActivity, m.inboxView.Notifications()[0].Category)

	m = feed(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewNotes, m.currentView)
}
