package suggest

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Normalize fills a missing Label or Value from the other field and drops
// items that have neither.
func Normalize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		switch {
		case it.Label == "" && it.Value == "":
			continue
		case it.Label == "":
			it.Label = it.Value
		case it.Value == "":
			it.Value = it.Label
		}
		out = append(out, it)
	}
	return out
}

// DecodeResults parses a {"results": [...]} payload. Entries may be objects
// with label/value strings or bare strings. Entries of any other shape are
// skipped; a payload without a results array is ErrMalformedResponse.
func DecodeResults(data []byte) ([]Item, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	raw, ok := envelope["results"]
	if !ok {
		return nil, fmt.Errorf("%w: missing results", ErrMalformedResponse)
	}

	var entries []json.RawMessage
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: results is not an array", ErrMalformedResponse)
	}
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		if it, ok := decodeEntry(entry); ok {
			items = append(items, it)
		}
	}
	return Normalize(items), nil
}

func decodeEntry(entry json.RawMessage) (Item, bool) {
	var s string
	if err := json.Unmarshal(entry, &s); err == nil {
		return Item{Label: s, Value: s}, true
	}

	var obj struct {
		Label *string `json:"label"`
		Value *string `json:"value"`
	}
	if err := json.Unmarshal(entry, &obj); err != nil {
		return Item{}, false
	}
	var it Item
	if obj.Label != nil {
		it.Label = *obj.Label
	}
	if obj.Value != nil {
		it.Value = *obj.Value
	}
	return it, true
}
