package domain

// Store interfaces are satisfied by the in-memory implementations in
// internal/store. All stores preserve insertion order within one index;
// there is no cross-index ordering guarantee. Nothing here blocks, so no
// context plumbing: every time-sensitive operation takes an explicit now.

type AssertionGraph interface {
	PutAssertion(a *Assertion)
	PutEvidence(e *Evidence)
	GetAssertion(id string) (*Assertion, error)
	GetEvidence(id string) (*Evidence, error)
	ListAssertions() []*Assertion
	ListEvidence() []*Evidence
	Lineage(assertionID string) (*Lineage, error)
	Clear()
}

type BeliefStore interface {
	Put(b *Belief)
	GetByID(id string) (*Belief, error)
	ListByAssertion(assertionID string) []*Belief
	List() []*Belief
	Delete(id string)
	Clear()
}

type ContradictionStore interface {
	// Put indexes the contradiction and reports whether it was new.
	// Re-inserting an existing id is a no-op.
	Put(c *Contradiction) bool
	GetByID(id string) (*Contradiction, error)
	List() []*Contradiction
	SetResolution(id string, status ResolutionStatus) error
}

type OverrideStore interface {
	Put(o *HumanOverride)
	GetByID(id string) (*HumanOverride, error)
	List() []*HumanOverride
}

type DecisionStore interface {
	Put(d *Decision)
	GetByID(id string) (*Decision, error)
	List() []*Decision
}

type SignalStore interface {
	Put(s *EconomicSignal)
	GetByID(id string) (*EconomicSignal, error)
	List() []*EconomicSignal
	ListByTarget(appliesTo string) []*EconomicSignal
}

type PolicyStore interface {
	Put(p *Policy)
	GetByID(id string) (*Policy, error)
	List() []*Policy
}

type MeaningStore interface {
	Put(m *MeaningVersion)
	MeaningIDs() []string
	ListByMeaning(meaningID string) []*MeaningVersion
	List() []*MeaningVersion
}
