package domain

// Lineage is everything reachable from one assertion: cited evidence, any
// assertions reachable through cited ids, and the transformation strings
// along the way. The graph only models assertion→evidence edges, so deep
// assertion chains surface only where an assertion id is cited directly.
type Lineage struct {
	Root            string       `json:"root"`
	Assertions      []*Assertion `json:"assertions"`
	Evidence        []*Evidence  `json:"evidence"`
	Transformations []string     `json:"transformations"`
}
