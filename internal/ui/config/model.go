// Package config is the settings view: it shows the active configuration
// and edits the AI and notification settings with huh forms.
package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/UgochukwuChidera/studio-sub001/internal/credential"
	"github.com/UgochukwuChidera/studio-sub001/internal/keys"
	"github.com/UgochukwuChidera/studio-sub001/internal/kv"
	"github.com/UgochukwuChidera/studio-sub001/internal/model"
	"github.com/UgochukwuChidera/studio-sub001/internal/theme"
)

// Mode represents the current state of the settings view.
type Mode int

const (
	ModeView          Mode = iota // Show the active settings
	ModeForm                      // Edit form
	ModeConfirmForget             // Confirm removal of the stored API key
)

// DoneMsg signals the settings view should close.
type DoneMsg struct{}

// SavedMsg is sent after the settings were written.
type SavedMsg struct {
	Config model.AppConfig
}

// savedInternalMsg is sent after the config file and API key are persisted.
type savedInternalMsg struct {
	cfg model.AppConfig
	err error
}

// keyForgottenMsg is sent after the stored API key was removed.
type keyForgottenMsg struct {
	err error
}

// formFields holds the values huh binds to. It lives behind a pointer so
// the bindings survive copies of Model.
type formFields struct {
	model     string
	timeout   string
	prompts   string
	days      string
	maxCount  string
	poll      string
	apiKey    string
	forgetKey bool
}

// Model is the Bubble Tea model for the settings view.
type Model struct {
	mode    Mode
	cfg     model.AppConfig
	path    string
	secrets kv.Store

	form        *huh.Form
	confirmForm *huh.Form
	fields      *formFields

	// Status message for transient feedback
	statusMsg string

	keys          *keys.KeyMap
	width, height int
}

// New creates a settings view for cfg, saved to path. The API key field
// writes to secrets; a nil secrets store hides it.
func New(cfg model.AppConfig, path string, secrets kv.Store, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:    ModeView,
		cfg:     cfg,
		path:    path,
		secrets: secrets,
		fields:  &formFields{},
		keys:    k,
		width:   width,
		height:  height,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Editing reports whether a form owns the keyboard.
func (m Model) Editing() bool {
	return m.mode != ModeView
}

// Config returns the settings as last saved.
func (m Model) Config() model.AppConfig {
	return m.cfg
}

// Status returns the last status message.
func (m Model) Status() string {
	return m.statusMsg
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case savedInternalMsg:
		m.mode = ModeView
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error saving settings: %v", msg.err)
			return m, nil
		}
		m.cfg = msg.cfg
		m.statusMsg = "Settings saved"
		saved := msg.cfg
		return m, func() tea.Msg { return SavedMsg{Config: saved} }

	case keyForgottenMsg:
		m.mode = ModeView
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error removing API key: %v", msg.err)
			return m, nil
		}
		m.statusMsg = "API key removed"
		return m, nil

	case tea.KeyMsg:
		if m.mode == ModeView {
			return m.handleViewKeys(msg)
		}
	}

	// Delegate to active form
	return m.updateActiveForm(msg)
}

// handleViewKeys processes key events while the settings are shown.
func (m Model) handleViewKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return DoneMsg{} }

	case key.Matches(msg, m.keys.EditNote), key.Matches(msg, m.keys.Select):
		return m, m.StartEdit()

	case key.Matches(msg, m.keys.Remove):
		if m.secrets == nil {
			return m, nil
		}
		m.fields.forgetKey = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = ModeConfirmForget
		return m, m.confirmForm.Init()
	}

	return m, nil
}

// StartEdit opens the edit form prefilled with the current settings.
func (m *Model) StartEdit() tea.Cmd {
	m.fillForm()
	m.form = m.buildForm()
	m.mode = ModeForm
	return m.form.Init()
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case ModeForm:
		return m.updateForm(msg)
	case ModeConfirmForget:
		return m.updateConfirmForm(msg)
	}
	return m, nil
}

// --- Edit Form ---

func (m *Model) fillForm() {
	m.fields.model = m.cfg.AI.Model
	m.fields.timeout = strconv.Itoa(m.cfg.AI.TimeoutSec)
	m.fields.prompts = m.cfg.AI.PromptDir
	m.fields.days = strconv.Itoa(m.cfg.Notifications.RetentionDays)
	m.fields.maxCount = strconv.Itoa(m.cfg.Notifications.MaxCount)
	m.fields.poll = strconv.Itoa(m.cfg.Notifications.PollIntervalSec)
	m.fields.apiKey = "" // Never pre-fill credentials
}

func (m *Model) buildForm() *huh.Form {
	ai := huh.NewGroup(
		huh.NewInput().
			Title("Model").
			Description("Gemini model used by every flow").
			Value(&m.fields.model).
			Validate(validateRequired("Model")),
		huh.NewInput().
			Title("Timeout (seconds)").
			Description("Deadline for one generation").
			Value(&m.fields.timeout).
			Validate(validatePositive("Timeout")),
		huh.NewInput().
			Title("Prompt directory").
			Description("Optional directory of prompt overrides").
			Value(&m.fields.prompts),
	).Title("Generation")

	notifications := huh.NewGroup(
		huh.NewInput().
			Title("Keep notifications for (days)").
			Description("0 keeps them forever").
			Value(&m.fields.days).
			Validate(validateNonNegative("Days")),
		huh.NewInput().
			Title("Keep at most").
			Description("0 keeps every notification").
			Value(&m.fields.maxCount).
			Validate(validateNonNegative("Count")),
		huh.NewInput().
			Title("Check for new notifications every (seconds)").
			Value(&m.fields.poll).
			Validate(validatePositive("Interval")),
	).Title("Notifications")

	groups := []*huh.Group{ai, notifications}
	if m.secrets != nil {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("Gemini API key").
				Description("Leave empty to keep the stored key").
				EchoMode(huh.EchoModePassword).
				Value(&m.fields.apiKey),
		).Title("Credentials"))
	}

	return huh.NewForm(groups...).WithWidth(m.formWidth())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.save()
	}
	if m.form.State == huh.StateAborted {
		m.mode = ModeView
		return m, nil
	}

	return m, cmd
}

// apply returns the configuration described by the form fields.
func (m Model) apply() (model.AppConfig, error) {
	cfg := m.cfg

	ints := []struct {
		name string
		raw  string
		dst  *int
	}{
		{"timeout", m.fields.timeout, &cfg.AI.TimeoutSec},
		{"retention days", m.fields.days, &cfg.Notifications.RetentionDays},
		{"max count", m.fields.maxCount, &cfg.Notifications.MaxCount},
		{"poll interval", m.fields.poll, &cfg.Notifications.PollIntervalSec},
	}
	for _, f := range ints {
		n, err := strconv.Atoi(strings.TrimSpace(f.raw))
		if err != nil {
			return model.AppConfig{}, fmt.Errorf("%s: %q is not a number", f.name, f.raw)
		}
		*f.dst = n
	}

	cfg.AI.Model = strings.TrimSpace(m.fields.model)
	cfg.AI.PromptDir = strings.TrimSpace(m.fields.prompts)
	return cfg, nil
}

// save returns a command that writes the config file and, when one was
// entered, the API key.
func (m Model) save() tea.Cmd {
	cfg, err := m.apply()
	if err != nil {
		return func() tea.Msg { return savedInternalMsg{err: err} }
	}

	path, secrets, apiKey := m.path, m.secrets, strings.TrimSpace(m.fields.apiKey)
	return func() tea.Msg {
		if err := model.SaveConfig(path, &cfg); err != nil {
			return savedInternalMsg{err: err}
		}
		if apiKey != "" && secrets != nil {
			if err := secrets.Set(context.Background(), credential.APIKeyName, apiKey); err != nil {
				return savedInternalMsg{err: fmt.Errorf("storing API key: %w", err)}
			}
		}
		return savedInternalMsg{cfg: cfg}
	}
}

// --- Forget API key ---

func (m *Model) buildConfirmForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Remove the stored Gemini API key?").
				Description("Generation keeps working if GEMINI_API_KEY is set.").
				Affirmative("Remove").
				Negative("Keep").
				Value(&m.fields.forgetKey),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateConfirmForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}

	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}

	switch m.confirmForm.State {
	case huh.StateCompleted:
		if !m.fields.forgetKey {
			m.mode = ModeView
			return m, nil
		}
		return m, m.forgetAPIKey()
	case huh.StateAborted:
		m.mode = ModeView
		return m, nil
	}

	return m, cmd
}

func (m Model) forgetAPIKey() tea.Cmd {
	secrets := m.secrets
	return func() tea.Msg {
		return keyForgottenMsg{err: secrets.Delete(context.Background(), credential.APIKeyName)}
	}
}

// --- View ---

// View renders the settings view.
func (m Model) View() string {
	switch m.mode {
	case ModeForm:
		if m.form != nil {
			return m.form.View()
		}
	case ModeConfirmForget:
		if m.confirmForm != nil {
			return m.confirmForm.View()
		}
	}
	return m.viewSettings()
}

func (m Model) viewSettings() string {
	style := lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height)

	section := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
	label := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(22)
	value := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	row := func(l, v string) string {
		return label.Render(l) + value.Render(v)
	}

	var b strings.Builder
	b.WriteString(section.Render("Generation") + "\n")
	b.WriteString(row("Model", m.cfg.AI.Model) + "\n")
	b.WriteString(row("Timeout", fmt.Sprintf("%ds", m.cfg.AI.TimeoutSec)) + "\n")
	b.WriteString(row("Prompt directory", orNone(m.cfg.AI.PromptDir)) + "\n\n")

	b.WriteString(section.Render("Notifications") + "\n")
	b.WriteString(row("Retention", retentionText(m.cfg.Notifications)) + "\n")
	b.WriteString(row("Poll interval", fmt.Sprintf("%ds", m.cfg.Notifications.PollIntervalSec)) + "\n\n")

	b.WriteString(section.Render("Storage") + "\n")
	b.WriteString(row("Database", m.cfg.Storage.DBPath) + "\n")
	b.WriteString(row("Config file", m.path) + "\n")

	if m.statusMsg != "" {
		b.WriteString("\n" + m.statusMsg + "\n")
	}

	hint := "e edit | esc back"
	if m.secrets != nil {
		hint = "e edit | d remove API key | esc back"
	}
	b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.ColorGray).Render(hint))

	return style.Render(b.String())
}

// retentionText describes a retention policy.
func retentionText(c model.NotificationConfig) string {
	var parts []string
	if c.RetentionDays > 0 {
		parts = append(parts, fmt.Sprintf("%d days", c.RetentionDays))
	}
	if c.MaxCount > 0 {
		parts = append(parts, fmt.Sprintf("newest %d", c.MaxCount))
	}
	if len(parts) == 0 {
		return "unbounded"
	}
	return strings.Join(parts, ", ")
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// --- Helpers ---

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

// --- Validators ---

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validatePositive(fieldName string) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive number", fieldName)
		}
		return nil
	}
}

func validateNonNegative(fieldName string) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be 0 or more", fieldName)
		}
		return nil
	}
}
