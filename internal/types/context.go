package types

import (
	"time"

	"github.com/google/uuid"
)

// SharedContext is the frozen evidence snapshot a run synthesizes from.
// Results holds one entry per REQUESTED kind, failed extractions included,
// so a requested source is never silently dropped. The snapshot is built
// once after collection and is read-only from then on; feedback cycles bind
// to the same snapshot and never re-run extraction.
type SharedContext struct {
	RunID    uuid.UUID                   `json:"run_id"`
	Results  map[SourceKind]SourceResult `json:"results"`
	Keywords []string                    `json:"keywords"`

	// Additions are candidate-supplied facts, frozen with the rest of the
	// evidence. They are not a source and have no adapter.
	Additions string    `json:"additions,omitempty"`
	BuiltAt   time.Time `json:"built_at"`
}

// Result returns the outcome recorded for kind, if the kind was requested.
func (c *SharedContext) Result(kind SourceKind) (SourceResult, bool) {
	res, ok := c.Results[kind]
	return res, ok
}

// Present reports whether kind was requested and yielded content.
func (c *SharedContext) Present(kind SourceKind) bool {
	res, ok := c.Results[kind]
	return ok && res.Present()
}

// PresentCount counts the sources that yielded content. Zero is a valid
// context; synthesis then states that every source was unavailable.
func (c *SharedContext) PresentCount() int {
	n := 0
	for _, res := range c.Results {
		if res.Present() {
			n++
		}
	}
	return n
}

// Requested returns the kinds recorded in this context in canonical order.
func (c *SharedContext) Requested() []SourceKind {
	var kinds []SourceKind
	for _, kind := range KindOrder {
		if _, ok := c.Results[kind]; ok {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}
