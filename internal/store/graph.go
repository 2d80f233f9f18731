package store

import (
	"github.com/credohq/credo/internal/domain"
)

// AssertionGraph holds assertions and evidence in two id-indices plus an
// adjacency index from assertion id to the evidence ids it cites. Ids are
// content-derived, so inserting the same record twice is idempotent.
type AssertionGraph struct {
	assertions *index[*domain.Assertion]
	evidence   *index[*domain.Evidence]
	adjacency  map[string][]string
}

func NewAssertionGraph() *AssertionGraph {
	return &AssertionGraph{
		assertions: newIndex[*domain.Assertion](),
		evidence:   newIndex[*domain.Evidence](),
		adjacency:  make(map[string][]string),
	}
}

func (g *AssertionGraph) PutAssertion(a *domain.Assertion) {
	g.assertions.put(a.ID, a)
	g.adjacency[a.ID] = a.EvidenceIDs
}

func (g *AssertionGraph) PutEvidence(e *domain.Evidence) {
	g.evidence.put(e.ID, e)
}

func (g *AssertionGraph) GetAssertion(id string) (*domain.Assertion, error) {
	a, ok := g.assertions.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (g *AssertionGraph) GetEvidence(id string) (*domain.Evidence, error) {
	e, ok := g.evidence.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (g *AssertionGraph) ListAssertions() []*domain.Assertion {
	return g.assertions.list()
}

func (g *AssertionGraph) ListEvidence() []*domain.Evidence {
	return g.evidence.list()
}

// Lineage walks breadth-first from the target assertion, resolving each
// cited id against both indices. Reachable assertions (excluding the root)
// contribute their transformation and are expanded further; ids that match
// nothing resolve as absent rather than erroring.
func (g *AssertionGraph) Lineage(assertionID string) (*domain.Lineage, error) {
	root, ok := g.assertions.get(assertionID)
	if !ok {
		return nil, ErrNotFound
	}

	lineage := &domain.Lineage{
		Root:            assertionID,
		Assertions:      []*domain.Assertion{},
		Evidence:        []*domain.Evidence{},
		Transformations: []string{},
	}
	if root.Transformation != "" {
		lineage.Transformations = append(lineage.Transformations, root.Transformation)
	}

	visited := map[string]struct{}{assertionID: {}}
	queue := append([]string(nil), g.adjacency[assertionID]...)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}

		if e, ok := g.evidence.get(id); ok {
			lineage.Evidence = append(lineage.Evidence, e)
		}
		if a, ok := g.assertions.get(id); ok {
			lineage.Assertions = append(lineage.Assertions, a)
			if a.Transformation != "" {
				lineage.Transformations = append(lineage.Transformations, a.Transformation)
			}
			queue = append(queue, g.adjacency[id]...)
		}
	}
	return lineage, nil
}

func (g *AssertionGraph) Clear() {
	g.assertions.clear()
	g.evidence.clear()
	g.adjacency = make(map[string][]string)
}
