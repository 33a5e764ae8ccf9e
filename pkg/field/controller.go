package field

import (
	"github.com/bastiangx/tagcomplete/internal/logger"
	"github.com/bastiangx/tagcomplete/pkg/suggest"
	"github.com/bastiangx/tagcomplete/pkg/terms"
	"github.com/charmbracelet/log"
)

// Options configures a Controller. The same controller serves a search bar
// (AutoFocus, MinLength 2 for example) and a tag field (defaults).
type Options struct {
	// MinLength is passed to the fetcher.
	MinLength int
	// AutoFocus highlights the first suggestion when a list opens.
	AutoFocus bool
}

// Controller is the completion state machine for one Input. Its methods are
// meant to be called from the host's event loop only; the single exception
// is Query.Run, which the host runs elsewhere and feeds back via Resolve.
type Controller struct {
	input   Input
	fetcher *suggest.Fetcher
	guard   Guard
	opts    Options
	log     *log.Logger

	state  State
	items  []suggest.Item
	active int
}

// NewController binds input to source.
func NewController(input Input, source suggest.Source, opts Options) *Controller {
	return &Controller{
		input:   input,
		fetcher: suggest.NewFetcher(source, suggest.Options{MinLength: opts.MinLength}),
		opts:    opts,
		log:     logger.New("field"),
		active:  -1,
	}
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Items returns the open suggestion list, or nil.
func (c *Controller) Items() []suggest.Item { return c.items }

// ActiveIndex returns the highlighted item index, or -1.
func (c *Controller) ActiveIndex() int { return c.active }

// Active returns the highlighted item.
func (c *Controller) Active() (suggest.Item, bool) {
	if c.state != Suggesting || c.active < 0 || c.active >= len(c.items) {
		return suggest.Item{}, false
	}
	return c.items[c.active], true
}

func (c *Controller) setState(s State) {
	if s == c.state {
		return
	}
	c.log.Debug("transition", "from", c.state, "to", s)
	c.state = s
}

func (c *Controller) closeList() {
	c.items = nil
	c.active = -1
}

// Changed must be called after the user edited the field. It returns the
// query to run, or nil when the field is empty or the fragment is too short,
// in which case any pending query is cancelled and the controller is Idle.
func (c *Controller) Changed() *suggest.Query {
	c.closeList()

	value := c.input.Value()
	if value == "" {
		c.fetcher.Cancel()
		c.setState(Idle)
		return nil
	}

	q, ok := c.fetcher.Begin(value)
	if !ok {
		c.setState(Idle)
		return nil
	}
	c.setState(Querying)
	return q
}

// Resolve applies a query result. Results of superseded or cancelled queries
// are dropped and Resolve returns false.
func (c *Controller) Resolve(r suggest.Result) bool {
	if c.state != Querying || !c.fetcher.Current(r) {
		c.log.Debugf("Dropping stale result #%d for '%s'", r.Seq, r.Term)
		return false
	}
	c.fetcher.Cancel()

	if len(r.Items) == 0 {
		c.closeList()
		c.setState(Idle)
		return true
	}

	c.items = r.Items
	c.active = -1
	if c.opts.AutoFocus {
		c.active = 0
	}
	c.setState(Suggesting)
	return true
}

// Key handles a navigation key and reports whether its default effect must be
// suppressed. Printable keys are not handled here; the host calls Changed
// after applying them.
func (c *Controller) Key(k Key) bool {
	switch k {
	case KeyUp:
		return c.Move(-1)
	case KeyDown:
		return c.Move(1)
	case KeyEscape:
		if c.state == Suggesting || c.state == Querying {
			c.Dismiss()
			return true
		}
		return false
	case KeyTab, KeyEnter:
		item, ok := c.Active()
		if !c.guard.Suppress(k, ok) {
			return false
		}
		c.Accept(item)
		return true
	default:
		return false
	}
}

// Move shifts the highlight by delta. Moving past either end leaves no item
// highlighted before wrapping around. The field value is never touched:
// only Accept writes to the input.
func (c *Controller) Move(delta int) bool {
	if c.state != Suggesting || len(c.items) == 0 {
		return false
	}
	n := len(c.items) + 1 // the extra slot is "nothing highlighted"
	c.active = ((c.active+1+delta)%n+n)%n - 1
	return true
}

// Accept merges item into the field, replacing the fragment being typed, and
// moves the caret to the end. It is also used for mouse selection, so it does
// not require an open list.
func (c *Controller) Accept(item suggest.Item) {
	c.setState(Committing)
	c.fetcher.Cancel()

	merged := terms.Merge(c.input.Value(), item.Value)
	c.input.SetValue(merged)
	c.input.CursorEnd()
	c.log.Debugf("Accepted '%s'", item.Value)

	c.closeList()
	c.setState(Idle)
}

// Dismiss closes the list and abandons any pending query.
func (c *Controller) Dismiss() {
	c.fetcher.Cancel()
	c.closeList()
	c.setState(Idle)
}

// Blur is called when the field loses focus.
func (c *Controller) Blur() {
	c.Dismiss()
}
