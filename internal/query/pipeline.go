package query

import (
	"strings"

	"github.com/oakwood-commons/tbx/internal/table"
)

// Pipeline is an ordered step list over a shared, read-only base table.
// Evaluation of the full chain is pure: the same base and steps always yield
// a bit-identical view, which is what makes caching and generation-based
// supersession safe. The pipeline itself holds no view; materialized results
// live with the owning tab.
type Pipeline struct {
	steps []Step
}

// Steps returns the current step list (callers must not mutate it).
func (p *Pipeline) Steps() []Step { return p.steps }

// Len returns the number of steps.
func (p *Pipeline) Len() int { return len(p.steps) }

// Hash returns the content hash of the current step list.
func (p *Pipeline) Hash() uint64 { return ContentHash(p.steps) }

// Push appends a step. Steps are never edited in place.
func (p *Pipeline) Push(s Step) {
	p.steps = append(p.steps, s)
}

// Undo removes the last step. It reports whether a step was removed.
func (p *Pipeline) Undo() bool {
	if len(p.steps) == 0 {
		return false
	}
	p.steps = p.steps[:len(p.steps)-1]
	return true
}

// Reset clears all steps, returning the pipeline to the base table.
func (p *Pipeline) Reset() {
	p.steps = nil
}

// Clone copies the step list so an evaluation can run against a snapshot
// while the live pipeline keeps accepting edits.
func (p *Pipeline) Clone() *Pipeline {
	return &Pipeline{steps: append([]Step(nil), p.steps...)}
}

// String renders the pipeline as its command text, newest step last.
func (p *Pipeline) String() string {
	if len(p.steps) == 0 {
		return ""
	}
	parts := make([]string, len(p.steps))
	for i, s := range p.steps {
		parts[i] = s.String()
	}
	return strings.Join(parts, " | ")
}

// Apply evaluates the step sequence against the base table. Each step
// consumes the previous step's output; column references resolve against the
// input schema of their own step, so a raw step may change the schema for
// everything after it. A step failure aborts evaluation and returns a
// *Error; the base is never modified.
func Apply(base *table.Table, steps []Step) (*table.Table, error) {
	cur := base
	for _, s := range steps {
		next, err := s.apply(cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// Evaluate is Apply over the pipeline's own steps.
func (p *Pipeline) Evaluate(base *table.Table) (*table.Table, error) {
	return Apply(base, p.steps)
}
