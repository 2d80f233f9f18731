package identity

import (
	"strings"
	"testing"
	"time"
)

func TestHashDeterministic(t *testing.T) {
	a := Hash("claim", "source", "2026-01-01")
	b := Hash("claim", "source", "2026-01-01")
	if a != b {
		t.Fatalf("expected same hash, got %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, Prefix) {
		t.Fatalf("expected %s prefix, got %s", Prefix, a)
	}
}

func TestHashOrderSensitive(t *testing.T) {
	if Hash("a", "b") == Hash("b", "a") {
		t.Fatal("expected order to change the hash")
	}
}

func TestHashEmptyPartDistinct(t *testing.T) {
	if Hash("a") == Hash("a", "") {
		t.Fatal("expected trailing empty part to change the hash")
	}
}

func TestHashListPreservesElementBoundaries(t *testing.T) {
	if HashList([]string{"ab", "c"}) == HashList([]string{"a", "bc"}) {
		t.Fatal("expected element boundaries to matter")
	}
}

func TestTimePartStableAcrossZones(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	utc := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	shifted := utc.In(loc)
	if TimePart(utc) != TimePart(shifted) {
		t.Fatal("expected identical time part regardless of zone")
	}
}
