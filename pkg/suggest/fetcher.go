package suggest

import (
	"context"
	"sync"
	"unicode/utf8"

	"github.com/bastiangx/tagcomplete/pkg/terms"
	"github.com/charmbracelet/log"
)

// Options configures a Fetcher.
type Options struct {
	// MinLength is the number of runes the fragment needs before a query is
	// issued. 0 queries on every change, including an empty fragment.
	MinLength int
}

// Result is the outcome of one Query. Items is empty (never nil) when the
// query failed; Err then says why, for logging only.
type Result struct {
	Seq   uint64
	Term  string
	Items []Item
	Err   error
}

// Query is a single issued request. Run performs it.
type Query struct {
	Seq  uint64
	Term string

	ctx    context.Context
	cancel context.CancelFunc
	source Source
}

// Run calls the source and blocks until it answers or the query is
// cancelled. Call it off the UI goroutine.
func (q *Query) Run() Result {
	defer q.cancel()

	items, err := q.source.Suggest(q.ctx, q.Term)
	if err == nil {
		err = q.ctx.Err()
	}
	if err != nil {
		log.Debugf("Fetch #%d for '%s' failed: %v", q.Seq, q.Term, err)
		return Result{Seq: q.Seq, Term: q.Term, Items: []Item{}, Err: err}
	}
	if items == nil {
		items = []Item{}
	}
	return Result{Seq: q.Seq, Term: q.Term, Items: items}
}

// Fetcher issues sequenced queries against a Source. Starting a query
// cancels the previous one, and only the latest query's Result is Current.
type Fetcher struct {
	source Source
	opts   Options

	mu     sync.Mutex
	seq    uint64
	active uint64
	cancel context.CancelFunc
}

// NewFetcher creates a Fetcher. A negative MinLength is treated as 0.
func NewFetcher(source Source, opts Options) *Fetcher {
	if opts.MinLength < 0 {
		opts.MinLength = 0
	}
	return &Fetcher{source: source, opts: opts}
}

// Options returns the fetcher configuration.
func (f *Fetcher) Options() Options {
	return f.opts
}

// Qualifies reports whether fragment is long enough to be queried.
func (f *Fetcher) Qualifies(fragment string) bool {
	return utf8.RuneCountInString(fragment) >= f.opts.MinLength
}

// Begin prepares a query for the fragment of value. It returns false, and
// cancels any in-flight query, when the fragment is shorter than MinLength.
func (f *Fetcher) Begin(value string) (*Query, bool) {
	fragment := terms.ExtractLast(value)
	if !f.Qualifies(fragment) {
		f.Cancel()
		return nil, false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancel != nil {
		f.cancel()
	}
	f.seq++
	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.active = f.seq

	return &Query{
		Seq:    f.seq,
		Term:   fragment,
		ctx:    ctx,
		cancel: cancel,
		source: f.source,
	}, true
}

// Fetch begins a query and runs it on its own goroutine. The channel yields
// exactly one Result, or is closed without one when no query was issued.
func (f *Fetcher) Fetch(value string) <-chan Result {
	ch := make(chan Result, 1)
	q, ok := f.Begin(value)
	if !ok {
		close(ch)
		return ch
	}
	go func() {
		ch <- q.Run()
		close(ch)
	}()
	return ch
}

// Current reports whether r answers the most recent, still active query.
func (f *Fetcher) Current(r Result) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active != 0 && r.Seq == f.active
}

// Cancel aborts the in-flight query. Its Result, if it still arrives, is no
// longer Current.
func (f *Fetcher) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.active = 0
}
