// Package suggest fetches suggestions for the tag fragment being typed.
//
// A Fetcher turns the raw field value into a fragment (see terms.ExtractLast),
// asks a Source for candidates and tags every request with a sequence number
// so that answers to superseded requests can be dropped. Failures never
// surface to the caller as errors to handle: a failed fetch is a Result with
// no items, and the field keeps working as plain comma separated text.
package suggest

import (
	"context"
	"errors"
)

// Item is one suggestion. Label is shown in the list; Value is what gets
// merged into the field.
type Item struct {
	Label string `json:"label" msgpack:"l"`
	Value string `json:"value" msgpack:"v"`
}

// Source answers suggestion queries for a single term.
type Source interface {
	// Suggest returns candidates for term. It must honour ctx cancellation.
	Suggest(ctx context.Context, term string) ([]Item, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, term string) ([]Item, error)

// Suggest calls f.
func (f SourceFunc) Suggest(ctx context.Context, term string) ([]Item, error) {
	return f(ctx, term)
}

var (
	// ErrMalformedResponse reports a payload that is not {"results": [...]}.
	ErrMalformedResponse = errors.New("suggest: malformed response")
	// ErrTransport reports network, status or pipe failures.
	ErrTransport = errors.New("suggest: transport failure")
)
