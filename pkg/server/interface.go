/*
Package server answers tag suggestion queries over HTTP and over a msgpack
IPC stream.

# HTTP

The router exposes the endpoint the tag field polls while the user types:

	GET /_complete/tags?term=post

	{"results": [{"id": 3, "label": "postgres", "value": "postgres"},
	             {"id": 7, "label": "postgresql", "value": "postgresql"}]}

An empty term returns an empty result list, not an error. Terms longer than
the configured maximum are rejected with 400 and {"error": ..., "status": 400}.

Submitted tag lists are recorded with

	POST /api/tags
	{"tags": "go, postgres, rust"}

GET /api/tags?term=go lists stored tags with their use counts,
{"tags": [{"id": 4, "name": "go", "uses": 12}]}, and GET /health reports
{"status": "ok"}.

# IPC

IPC mode reads msgpack messages from stdin and writes responses to stdout,
one message after the other without extra framing. Keys are kept short:

	{"id": "7f0c…", "t": "post", "l": 15}

	{"id": "7f0c…", "r": [{"l": "postgres", "v": "postgres"}], "c": 1, "t": 85}

"t" in a response is the lookup time in microseconds. Failures are answered
with {"id": ..., "e": "message", "s": 400}. On start the server writes a
single {"status": "ready"} message.
*/
package server

// CompletionRequest asks for suggestions for Term.
type CompletionRequest struct {
	ID    string `msgpack:"id"`
	Term  string `msgpack:"t"`
	Limit int    `msgpack:"l,omitempty"`
}

// CompletionSuggestion is one label/value pair.
type CompletionSuggestion struct {
	Label string `msgpack:"l"`
	Value string `msgpack:"v"`
}

// CompletionResponse answers a CompletionRequest.
type CompletionResponse struct {
	ID          string                 `msgpack:"id"`
	Suggestions []CompletionSuggestion `msgpack:"r"`
	Count       int                    `msgpack:"c"`
	TimeTaken   int64                  `msgpack:"t"`
}

// CompletionError answers a request that could not be served.
type CompletionError struct {
	ID     string `msgpack:"id"`
	Error  string `msgpack:"e"`
	Status int    `msgpack:"s"`
}

// StatusMessage is written once when the IPC server is ready.
type StatusMessage struct {
	Status string `msgpack:"status"`
}

// TagResult is one entry of the HTTP results array.
type TagResult struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// CompletionResults is the HTTP completion payload.
type CompletionResults struct {
	Results []TagResult `json:"results"`
}

// ErrorResponse is the HTTP error payload.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// AddTagsRequest records a submitted comma separated tag list.
type AddTagsRequest struct {
	Tags string `json:"tags"`
}

// AddTagsResponse lists the stored tags.
type AddTagsResponse struct {
	Tags []TagResult `json:"tags"`
}

// StoredTag is a tag as kept in the database.
type StoredTag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Uses int    `json:"uses"`
}

// StoredTags lists stored tags.
type StoredTags struct {
	Tags []StoredTag `json:"tags"`
}
