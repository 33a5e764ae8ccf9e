package field

import (
	"context"
	"strings"
	"testing"

	"github.com/bastiangx/tagcomplete/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

// fakeInput records how the controller touches the field.
type fakeInput struct {
	value      string
	cursorEnds int
	writes     []string
}

func (f *fakeInput) Value() string { return f.value }

func (f *fakeInput) SetValue(v string) {
	f.value = v
	f.writes = append(f.writes, v)
}

func (f *fakeInput) CursorEnd() { f.cursorEnds++ }

// tagSource answers with every known tag starting with the term.
type tagSource []string

func (s tagSource) Suggest(_ context.Context, term string) ([]suggest.Item, error) {
	items := []suggest.Item{}
	for _, tag := range s {
		if strings.HasPrefix(tag, term) {
			items = append(items, suggest.Item{Label: tag, Value: tag})
		}
	}
	return items, nil
}

var tags = tagSource{"postgres", "postgresql", "python", "rust"}

func newController(value string, opts Options) (*Controller, *fakeInput) {
	in := &fakeInput{value: value}
	return NewController(in, tags, opts), in
}

// typeValue simulates an edit followed by the query round trip.
func typeValue(t *testing.T, c *Controller, in *fakeInput, value string) {
	t.Helper()
	in.value = value
	q := c.Changed()
	require.NotNil(t, q)
	require.Equal(t, Querying, c.State())
	require.True(t, c.Resolve(q.Run()))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "querying", Querying.String())
	assert.Equal(t, "suggesting", Suggesting.String())
	assert.Equal(t, "committing", Committing.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestGuard(t *testing.T) {
	var g Guard
	assert.True(t, g.Suppress(KeyTab, true))
	assert.False(t, g.Suppress(KeyTab, false), "tab moves focus when no list is open")
	assert.True(t, g.Suppress(KeyEnter, true))
	assert.False(t, g.Suppress(KeyEnter, false))
	assert.False(t, g.Suppress(KeyOther, true))
	assert.False(t, g.Suppress(KeyDown, true))
}

func TestInitialState(t *testing.T) {
	c, _ := newController("", Options{})
	assert.Equal(t, Idle, c.State())
	assert.Nil(t, c.Items())
	assert.Equal(t, -1, c.ActiveIndex())
}

func TestAcceptMergesFragment(t *testing.T) {
	c, in := newController("", Options{AutoFocus: true})
	typeValue(t, c, in, "postgres, post")

	require.Equal(t, Suggesting, c.State())
	require.Len(t, c.Items(), 2)

	assert.True(t, c.Key(KeyDown))
	item, ok := c.Active()
	require.True(t, ok)
	require.Equal(t, "postgresql", item.Value)
	assert.Equal(t, "postgres, post", in.value, "browsing must not write the field")

	assert.True(t, c.Key(KeyTab))
	assert.Equal(t, "postgres, postgresql, ", in.value)
	assert.Equal(t, 1, in.cursorEnds)
	assert.Equal(t, []string{"postgres, postgresql, "}, in.writes)
	assert.Equal(t, Idle, c.State())
	assert.Nil(t, c.Items())
}

func TestAcceptOnEmptyField(t *testing.T) {
	c, in := newController("", Options{})
	c.Accept(suggest.Item{Label: "python", Value: "python"})
	assert.Equal(t, "python, ", in.value)
	assert.Equal(t, 1, in.cursorEnds)
	assert.Equal(t, Idle, c.State())
}

func TestAcceptTwiceAddsTwoTerms(t *testing.T) {
	c, in := newController("", Options{})
	item := suggest.Item{Label: "go", Value: "go"}
	c.Accept(item)
	c.Accept(item)
	assert.Equal(t, "go, go, ", in.value)
}

func TestAcceptUsesValueNotLabel(t *testing.T) {
	c, in := newController("foo, ba", Options{})
	c.Accept(suggest.Item{Label: "Bar (42)", Value: "bar"})
	assert.Equal(t, "foo, bar, ", in.value)
}

func TestEmptyResultsReturnToIdle(t *testing.T) {
	c, in := newController("", Options{})
	typeValue(t, c, in, "go, xyz")

	assert.Equal(t, Idle, c.State())
	assert.Empty(t, c.Items())
	assert.Equal(t, "go, xyz", in.value)
	assert.Empty(t, in.writes)
}

func TestTabWithoutListIsNotSuppressed(t *testing.T) {
	c, in := newController("rust", Options{})
	assert.False(t, c.Key(KeyTab))
	assert.False(t, c.Key(KeyEnter))
	assert.Equal(t, "rust", in.value)
	assert.Equal(t, Idle, c.State())
}

func TestTabWithoutHighlightIsNotSuppressed(t *testing.T) {
	c, in := newController("", Options{})
	typeValue(t, c, in, "p")
	require.Equal(t, Suggesting, c.State())
	require.Equal(t, -1, c.ActiveIndex())

	assert.False(t, c.Key(KeyTab))
	assert.Equal(t, "p", in.value)
}

func TestEnterCommitsActiveItem(t *testing.T) {
	c, in := newController("", Options{AutoFocus: true})
	typeValue(t, c, in, "ru")
	assert.True(t, c.Key(KeyEnter))
	assert.Equal(t, "rust, ", in.value)
}

func TestMoveWrapsThroughNoHighlight(t *testing.T) {
	c, in := newController("", Options{})
	typeValue(t, c, in, "p") // postgres, postgresql, python

	var seen []int
	for i := 0; i < 5; i++ {
		c.Key(KeyDown)
		seen = append(seen, c.ActiveIndex())
	}
	assert.Equal(t, []int{0, 1, 2, -1, 0}, seen)

	c.Key(KeyUp)
	c.Key(KeyUp)
	assert.Equal(t, 2, c.ActiveIndex())
	assert.Empty(t, in.writes)
}

func TestMoveWithoutList(t *testing.T) {
	c, _ := newController("x", Options{})
	assert.False(t, c.Key(KeyDown))
	assert.False(t, c.Move(1))
}

func TestEscapeClosesList(t *testing.T) {
	c, in := newController("", Options{AutoFocus: true})
	typeValue(t, c, in, "py")

	assert.True(t, c.Key(KeyEscape))
	assert.Equal(t, Idle, c.State())
	assert.Nil(t, c.Items())
	assert.False(t, c.Key(KeyEscape), "escape with no list keeps its default")
	assert.Equal(t, "py", in.value)
}

func TestEscapeDropsPendingQuery(t *testing.T) {
	c, in := newController("py", Options{})
	q := c.Changed()
	require.NotNil(t, q)

	assert.True(t, c.Key(KeyEscape))
	assert.False(t, c.Resolve(q.Run()))
	assert.Equal(t, Idle, c.State())
	assert.Nil(t, c.Items())
	assert.Equal(t, "py", in.value)
}

func TestBlurCancelsQuery(t *testing.T) {
	c, _ := newController("po", Options{})
	q := c.Changed()
	require.NotNil(t, q)

	c.Blur()
	r := q.Run()
	assert.ErrorIs(t, r.Err, context.Canceled)
	assert.False(t, c.Resolve(r))
	assert.Equal(t, Idle, c.State())
}

func TestEmptiedFieldCancels(t *testing.T) {
	c, in := newController("p", Options{})
	q := c.Changed()
	require.NotNil(t, q)

	in.value = ""
	assert.Nil(t, c.Changed())
	assert.Equal(t, Idle, c.State())
	assert.False(t, c.Resolve(q.Run()))
}

func TestStaleResultDropped(t *testing.T) {
	c, in := newController("p", Options{})
	qa := c.Changed()
	require.NotNil(t, qa)

	in.value = "py"
	qb := c.Changed()
	require.NotNil(t, qb)

	rb := qb.Run()
	ra := qa.Run()

	require.True(t, c.Resolve(rb))
	assert.False(t, c.Resolve(ra))
	require.Len(t, c.Items(), 1)
	assert.Equal(t, "python", c.Items()[0].Value)
}

func TestDuplicateResultIgnored(t *testing.T) {
	c, in := newController("", Options{})
	in.value = "ru"
	q := c.Changed()
	r := q.Run()

	require.True(t, c.Resolve(r))
	assert.False(t, c.Resolve(r))
	assert.Equal(t, Suggesting, c.State())
}

func TestKeystrokeWhileSuggestingRequeries(t *testing.T) {
	c, in := newController("", Options{AutoFocus: true})
	typeValue(t, c, in, "p")
	require.Equal(t, Suggesting, c.State())

	in.value = "pyt"
	q := c.Changed()
	require.NotNil(t, q)
	assert.Equal(t, Querying, c.State())
	assert.Nil(t, c.Items())
	assert.Equal(t, "pyt", q.Term)
}

func TestMinLength(t *testing.T) {
	c, in := newController("", Options{MinLength: 2})

	in.value = "go, p"
	assert.Nil(t, c.Changed())
	assert.Equal(t, Idle, c.State())

	in.value = "go, py"
	q := c.Changed()
	require.NotNil(t, q)
	assert.Equal(t, "py", q.Term)
}

func TestTrailingSeparatorQueriesEmptyFragment(t *testing.T) {
	c, in := newController("", Options{})
	in.value = "rust, "
	q := c.Changed()
	require.NotNil(t, q)
	assert.Equal(t, "", q.Term)

	require.True(t, c.Resolve(q.Run()))
	assert.Len(t, c.Items(), len(tags))
}

func TestFailingSourceDegrades(t *testing.T) {
	in := &fakeInput{value: "go"}
	src := suggest.SourceFunc(func(context.Context, string) ([]suggest.Item, error) {
		return nil, suggest.ErrTransport
	})
	c := NewController(in, src, Options{})

	q := c.Changed()
	require.NotNil(t, q)
	assert.True(t, c.Resolve(q.Run()))
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, "go", in.value)
}
