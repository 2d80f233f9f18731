package domain

import (
	"testing"
	"time"
)

func TestDecision_ConflictsWith(t *testing.T) {
	now := time.Now().UTC()
	mk := func(action, scope string) *Decision {
		return NewDecision(DecisionSystem, action, nil, nil, nil, "credo", scope, nil, now, nil)
	}

	tests := []struct {
		name string
		a, b *Decision
		want bool
	}{
		{"same scope, different action", mk("approve", "repo:x"), mk("reject", "repo:x"), true},
		{"same scope, same action", mk("approve", "repo:x"), mk("approve", "repo:x"), false},
		{"different scopes", mk("approve", "repo:x"), mk("reject", "repo:y"), false},
		{"unscoped left side", mk("approve", ""), mk("reject", "repo:x"), false},
		{"unscoped right side", mk("approve", "repo:x"), mk("reject", ""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.ConflictsWith(tt.b); got != tt.want {
				t.Errorf("ConflictsWith = %v, want %v", got, tt.want)
			}
			if got := tt.b.ConflictsWith(tt.a); got != tt.want {
				t.Errorf("ConflictsWith is not symmetric: %v, want %v", got, tt.want)
			}
		})
	}
}
