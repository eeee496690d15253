package bin

import "testing"

func TestModeValid(t *testing.T) {
	tests := []struct {
		mode  Mode
		valid bool
	}{
		{ModeAuto, true},
		{ModeAuth, true},
		{Mode("auto"), false},
		{Mode(""), false},
		{Mode("MANUAL"), false},
	}

	for _, tt := range tests {
		if got := tt.mode.Valid(); got != tt.valid {
			t.Errorf("Mode(%q).Valid() = %v, want %v", tt.mode, got, tt.valid)
		}
	}
}

func TestFillPercent(t *testing.T) {
	tests := []struct {
		name       string
		distanceCM float64
		capacityCM float64
		want       int
	}{
		{"empty bin", 200, 200, 0},
		{"full bin", 0, 200, 100},
		{"just under half", 110, 200, 45},
		{"mostly full", 30, 200, 85},
		{"rounds to nearest", 99, 200, 51},
		{"clamps below zero", 250, 200, 0},
		{"clamps above hundred", -10, 200, 100},
		{"zero capacity", 50, 0, 0},
		{"negative capacity", 50, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FillPercent(tt.distanceCM, tt.capacityCM); got != tt.want {
				t.Errorf("FillPercent(%v, %v) = %d, want %d", tt.distanceCM, tt.capacityCM, got, tt.want)
			}
		})
	}
}

func TestFillPercentDeterministic(t *testing.T) {
	// Same reading always yields the same percentage, regardless of how
	// many times it is converted.
	for i := 0; i < 10; i++ {
		if got := FillPercent(110, 200); got != 45 {
			t.Fatalf("FillPercent(110, 200) = %d on iteration %d, want 45", got, i)
		}
	}
}

func TestValidReading(t *testing.T) {
	tests := []struct {
		name       string
		distanceCM float64
		capacityCM float64
		want       bool
	}{
		{"in range", 50, 200, true},
		{"at floor", 200, 200, true},
		{"at sensor", 0, 200, true},
		{"negative", -1, 200, false},
		{"beyond floor", 201, 200, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidReading(tt.distanceCM, tt.capacityCM); got != tt.want {
				t.Errorf("ValidReading(%v, %v) = %v, want %v", tt.distanceCM, tt.capacityCM, got, tt.want)
			}
		})
	}
}

func TestConfigUpdateIsEmpty(t *testing.T) {
	if !(ConfigUpdate{}).IsEmpty() {
		t.Error("zero-value update should be empty")
	}

	mode := ModeAuth
	if (ConfigUpdate{Mode: &mode}).IsEmpty() {
		t.Error("update with mode set should not be empty")
	}

	threshold := 40.0
	if (ConfigUpdate{ThresholdCM: &threshold}).IsEmpty() {
		t.Error("update with threshold set should not be empty")
	}

	name := "Kitchen"
	if (ConfigUpdate{Name: &name}).IsEmpty() {
		t.Error("update with name set should not be empty")
	}
}
