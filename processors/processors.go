// Package processors builds the opaque EntryProcessor expressions
// consumed by Cache.Invoke / InvokeAll (spec §1 scope note).
package processors

import (
	"encoding/json"

	"github.com/rlubke/coherence-go-client/filters"
)

// Processor is an opaque, server-executed mutation of one entry.
type Processor interface {
	Encode() ([]byte, error)
}

type update struct {
	Value interface{} `json:"value"`
}

func (u update) Encode() ([]byte, error) { return json.Marshal(struct {
	Op string `json:"op"`
	update
}{"update", u}) }

// Update replaces an entry's value unconditionally.
func Update(value interface{}) Processor {
	return update{Value: value}
}

type conditionalPut struct {
	FilterID string      `json:"filter"`
	Value    interface{} `json:"value"`
}

func (c conditionalPut) Encode() ([]byte, error) { return json.Marshal(struct {
	Op string `json:"op"`
	conditionalPut
}{"conditionalPut", c}) }

// ConditionalPut replaces an entry's value only if filter matches its
// current value.
func ConditionalPut(filter filters.Filter, value interface{}) Processor {
	return conditionalPut{FilterID: filter.Identity(), Value: value}
}
