package domain

import (
	"strconv"
	"strings"
	"time"
)

// MeaningVersion is one semver-tagged definition of a shared term. Two
// versions of the same meaning are compatible iff their major versions match.
type MeaningVersion struct {
	MeaningID    string     `json:"meaning_id"`
	Version      string     `json:"version"`
	Definition   string     `json:"definition"`
	Computation  string     `json:"computation,omitempty"`
	Examples     []string   `json:"examples,omitempty"`
	Deprecated   bool       `json:"deprecated"`
	SupersededBy string     `json:"superseded_by,omitempty"`
	ValidFrom    time.Time  `json:"valid_from"`
	ValidUntil   *time.Time `json:"valid_until,omitempty"`
}

// MajorVersion parses the leading semver component. Malformed versions
// report -1, which never matches a real major and so always reads as
// incompatible.
func (m *MeaningVersion) MajorVersion() int {
	v := strings.TrimPrefix(m.Version, "v")
	head, _, _ := strings.Cut(v, ".")
	major, err := strconv.Atoi(head)
	if err != nil {
		return -1
	}
	return major
}

func (m *MeaningVersion) CompatibleWith(other *MeaningVersion) bool {
	a, b := m.MajorVersion(), other.MajorVersion()
	return a >= 0 && a == b
}
