package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/bastiangx/tagcomplete/pkg/field"
	"github.com/bastiangx/tagcomplete/pkg/index"
	"github.com/bastiangx/tagcomplete/pkg/server"
	"github.com/bastiangx/tagcomplete/pkg/suggest"
	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

var known = []string{"postgres", "postgresql", "python", "rust"}

func prefixSource() suggest.Source {
	return suggest.SourceFunc(func(_ context.Context, term string) ([]suggest.Item, error) {
		items := []suggest.Item{}
		for _, k := range known {
			if strings.HasPrefix(k, term) {
				items = append(items, suggest.Item{Label: k, Value: k})
			}
		}
		return items, nil
	})
}

func newTestModel(t *testing.T, value string, opts field.Options) *FieldModel {
	t.Helper()
	m := NewFieldModel(prefixSource(), FieldOptions{Value: value, Field: opts})
	// A static cursor keeps blink commands out of Update's results.
	m.input.Cursor.SetMode(cursor.CursorStatic)
	return m
}

// send delivers msg and runs any query command it produced.
func send(t *testing.T, m *FieldModel, msg tea.Msg) tea.Cmd {
	t.Helper()
	_, cmd := m.Update(msg)
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case resultMsg:
		m.Update(msg)
		return nil
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if res, ok := c().(resultMsg); ok {
				m.Update(res)
			}
		}
		return nil
	}
	return cmd
}

func typeRunes(t *testing.T, m *FieldModel, s string) {
	t.Helper()
	for _, r := range s {
		send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func TestFieldAcceptWithTab(t *testing.T) {
	m := newTestModel(t, "postgres, ", field.Options{AutoFocus: true})

	typeRunes(t, m, "post")
	require.Equal(t, field.Suggesting, m.State())
	assert.Contains(t, m.View(), "postgresql")

	send(t, m, key(tea.KeyDown))
	assert.Equal(t, "postgres, post", m.Value())

	send(t, m, key(tea.KeyTab))
	assert.Equal(t, "postgres, postgresql, ", m.Value())
	assert.Equal(t, field.Idle, m.State())
	assert.Equal(t, len(m.Value()), m.input.Position())
	assert.False(t, m.onButton, "accepting must keep focus in the field")
}

func TestFieldTabWithoutListMovesFocus(t *testing.T) {
	m := newTestModel(t, "rust", field.Options{})

	send(t, m, key(tea.KeyTab))
	assert.True(t, m.onButton)
	assert.False(t, m.input.Focused())
	assert.Equal(t, "rust", m.Value())

	send(t, m, key(tea.KeyTab))
	assert.False(t, m.onButton)
	assert.True(t, m.input.Focused())
}

func TestFieldNoResults(t *testing.T) {
	m := newTestModel(t, "", field.Options{})

	typeRunes(t, m, "xyz")
	assert.Equal(t, field.Idle, m.State())
	assert.Equal(t, "xyz", m.Value())
	assert.NotContains(t, m.View(), "postgres")
}

func TestFieldEscapeClosesList(t *testing.T) {
	m := newTestModel(t, "", field.Options{})

	typeRunes(t, m, "p")
	require.Equal(t, field.Suggesting, m.State())

	_, cmd := m.Update(key(tea.KeyEsc))
	assert.Nil(t, cmd, "first escape only closes the list")
	assert.Equal(t, field.Idle, m.State())
	assert.False(t, m.quitting)
}

func TestFieldStaleResultIgnored(t *testing.T) {
	m := newTestModel(t, "", field.Options{})

	_, first := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, first)
	typeRunes(t, m, "u")
	require.Equal(t, field.Suggesting, m.State())

	// The superseded "r" query resolves late.
	m.Update(first())
	assert.Len(t, m.ctrl.Items(), 1)
	assert.Equal(t, "rust", m.ctrl.Items()[0].Value)
}

func TestFieldSubmit(t *testing.T) {
	m := newTestModel(t, "go, rust, ", field.Options{})

	_, cmd := m.Update(key(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	tags, ok := m.Submitted()
	assert.True(t, ok)
	assert.Equal(t, []string{"go", "rust"}, tags)
	assert.Empty(t, m.View())
}

func TestFieldEnterWithActiveItemDoesNotSubmit(t *testing.T) {
	m := newTestModel(t, "", field.Options{AutoFocus: true})
	typeRunes(t, m, "py")

	_, cmd := m.Update(key(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Equal(t, "python, ", m.Value())
	_, ok := m.Submitted()
	assert.False(t, ok)
}

func TestFieldCtrlC(t *testing.T) {
	m := newTestModel(t, "go", field.Options{})
	_, cmd := m.Update(key(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	_, ok := m.Submitted()
	assert.False(t, ok)
}

func TestInputHandler(t *testing.T) {
	ix := index.New(index.ByName, 8)
	ix.AddAll([]index.Tag{{Name: "postgres"}, {Name: "postgresql"}})
	svc := server.NewService(ix, nil, server.Options{})

	var out bytes.Buffer
	h := NewInputHandler(svc, 5, &out)
	require.NoError(t, h.Start(strings.NewReader("go, post\n+rust, ruby\nru\nxyz\n")))

	got := out.String()
	assert.Contains(t, got, "2 suggestions for 'post'")
	assert.Contains(t, got, "go, postgresql, ")
	assert.Contains(t, got, "recorded 2 tags")
	assert.Contains(t, got, "2 suggestions for 'ru'")
	assert.Contains(t, got, "no suggestions for 'xyz'")
	assert.Equal(t, 4, h.requestCount)
}
