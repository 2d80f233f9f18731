package domain

import "testing"

func TestMeaningVersion_MajorVersion(t *testing.T) {
	tests := []struct {
		version string
		want    int
	}{
		{"1.0.0", 1},
		{"v2.3.1", 2},
		{"10", 10},
		{"0.9.0", 0},
		{"not-semver", -1},
		{"", -1},
	}

	for _, tt := range tests {
		m := &MeaningVersion{MeaningID: "coverage", Version: tt.version}
		if got := m.MajorVersion(); got != tt.want {
			t.Errorf("MajorVersion(%q) = %d, want %d", tt.version, got, tt.want)
		}
	}
}

func TestMeaningVersion_CompatibleWith(t *testing.T) {
	v1 := &MeaningVersion{MeaningID: "coverage", Version: "1.0.0"}
	v1b := &MeaningVersion{MeaningID: "coverage", Version: "1.4.0"}
	v2 := &MeaningVersion{MeaningID: "coverage", Version: "2.0.0"}
	bad := &MeaningVersion{MeaningID: "coverage", Version: "garbage"}

	if !v1.CompatibleWith(v1b) {
		t.Error("same major versions should be compatible")
	}
	if v1.CompatibleWith(v2) {
		t.Error("different major versions should be incompatible")
	}
	// Malformed versions never read as compatible, not even with themselves.
	if bad.CompatibleWith(bad) {
		t.Error("malformed version should be incompatible with everything")
	}
}
