package cli

import (
	"strings"

	"github.com/bastiangx/tagcomplete/pkg/field"
	"github.com/bastiangx/tagcomplete/pkg/suggest"
	"github.com/bastiangx/tagcomplete/pkg/terms"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	labelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	itemStyle   = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("252"))
	activeStyle = lipgloss.NewStyle().PaddingLeft(2).Reverse(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	buttonStyle = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder())
	focusStyle  = buttonStyle.BorderForeground(lipgloss.Color("75")).Bold(true)
)

// FieldOptions configures the tag field.
type FieldOptions struct {
	Field       field.Options
	Label       string
	Value       string
	Placeholder string
}

// resultMsg carries a finished suggestion query back to Update.
type resultMsg suggest.Result

// textInput lets the field controller drive a bubbles textinput.
type textInput struct {
	m *textinput.Model
}

func (t textInput) Value() string     { return t.m.Value() }
func (t textInput) SetValue(v string) { t.m.SetValue(v) }
func (t textInput) CursorEnd()        { t.m.CursorEnd() }

// FieldModel is a single comma separated tag field with a suggestion list
// below it and a submit button that Tab moves focus to.
type FieldModel struct {
	input textinput.Model
	ctrl  *field.Controller
	label string

	onButton  bool
	submitted bool
	quitting  bool
}

// NewFieldModel creates the model. Use it as a pointer: the controller holds
// on to the embedded text input.
func NewFieldModel(source suggest.Source, opts FieldOptions) *FieldModel {
	m := &FieldModel{label: opts.Label}
	if m.label == "" {
		m.label = "Tags"
	}

	m.input = textinput.New()
	m.input.Prompt = "> "
	m.input.Placeholder = opts.Placeholder
	m.input.Width = 60
	m.input.SetValue(opts.Value)
	m.input.CursorEnd()
	m.input.Focus()

	m.ctrl = field.NewController(textInput{m: &m.input}, source, opts.Field)
	return m
}

// Init implements tea.Model.
func (m *FieldModel) Init() tea.Cmd {
	return textinput.Blink
}

func runQuery(q *suggest.Query) tea.Cmd {
	return func() tea.Msg {
		return resultMsg(q.Run())
	}
}

func toKey(msg tea.KeyMsg) field.Key {
	switch msg.Type {
	case tea.KeyTab:
		return field.KeyTab
	case tea.KeyEnter:
		return field.KeyEnter
	case tea.KeyEsc:
		return field.KeyEscape
	case tea.KeyUp:
		return field.KeyUp
	case tea.KeyDown:
		return field.KeyDown
	default:
		return field.KeyOther
	}
}

// Update implements tea.Model.
func (m *FieldModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		m.ctrl.Resolve(suggest.Result(msg))
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.ctrl.Blur()
			m.quitting = true
			return m, tea.Quit
		}
		if m.onButton {
			return m.updateButton(msg)
		}
		if m.ctrl.Key(toKey(msg)) {
			return m, nil
		}
		switch msg.Type {
		case tea.KeyTab, tea.KeyShiftTab:
			m.onButton = true
			m.ctrl.Blur()
			m.input.Blur()
			return m, nil
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyEsc:
			m.ctrl.Blur()
			m.quitting = true
			return m, tea.Quit
		}
	}

	if !m.input.Focused() {
		return m, nil
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	if q := m.ctrl.Changed(); q != nil {
		return m, tea.Batch(cmd, runQuery(q))
	}
	return m, cmd
}

func (m *FieldModel) updateButton(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab:
		m.onButton = false
		return m, m.input.Focus()
	case tea.KeyEnter, tea.KeySpace:
		return m.submit()
	case tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *FieldModel) submit() (tea.Model, tea.Cmd) {
	m.ctrl.Blur()
	m.submitted = true
	return m, tea.Quit
}

// View implements tea.Model.
func (m *FieldModel) View() string {
	if m.quitting || m.submitted {
		return ""
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render(m.label))
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	b.WriteByte('\n')

	active := m.ctrl.ActiveIndex()
	for i, item := range m.ctrl.Items() {
		style := itemStyle
		if i == active {
			style = activeStyle
		}
		b.WriteString(style.Render(item.Label))
		b.WriteByte('\n')
	}

	button := buttonStyle
	if m.onButton {
		button = focusStyle
	}
	b.WriteString(button.Render("Save"))
	b.WriteByte('\n')
	b.WriteString(helpStyle.Render("↑/↓ browse • tab/enter accept • esc close • tab next • ctrl+c quit"))
	return b.String()
}

// Value returns the raw field value.
func (m *FieldModel) Value() string {
	return m.input.Value()
}

// Submitted returns the non-empty tags of the field and whether the user
// saved them.
func (m *FieldModel) Submitted() ([]string, bool) {
	return terms.Complete(m.input.Value()), m.submitted
}

// State exposes the controller state, mostly for tests and debug output.
func (m *FieldModel) State() field.State {
	return m.ctrl.State()
}
