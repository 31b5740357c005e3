// Package aggregators builds the opaque Aggregator expressions
// consumed by Cache.Aggregate (spec §1 scope note).
package aggregators

import (
	"encoding/json"

	"github.com/rlubke/coherence-go-client/extractors"
)

// Aggregator is an opaque, server-executed reduction over a set of
// entries.
type Aggregator interface {
	Encode() ([]byte, error)
}

type count struct{}

func (count) Encode() ([]byte, error) { return json.Marshal(struct {
	Op string `json:"op"`
}{"count"}) }

// Count returns the number of entries the aggregation targets.
func Count() Aggregator {
	return count{}
}

type sum struct {
	Extractor json.RawMessage `json:"extractor"`
}

func (s sum) Encode() ([]byte, error) { return json.Marshal(struct {
	Op string `json:"op"`
	sum
}{"sum", s}) }

// Sum adds extractor(value) across the targeted entries.
func Sum(extractor extractors.Extractor) Aggregator {
	enc, err := extractor.Encode()
	if err != nil {
		enc = []byte("null")
	}
	return sum{Extractor: enc}
}
