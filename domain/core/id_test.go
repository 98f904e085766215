package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestParseRunID tests run ID parsing
func TestParseRunID(t *testing.T) {
	valid := NewRunID().String()

	tests := []struct {
		input    string
		expected RunID
		hasError bool
	}{
		{valid, RunID(valid), false},
		{"  " + valid + " ", RunID(valid), false},
		{"run-123", "", true},
		{"", "", true},
	}

	for _, test := range tests {
		result, err := ParseRunID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

func TestFingerprintIgnoresOrder(t *testing.T) {
	a := Fingerprint(map[string]string{"iterations": "1000", "seed": "7"})
	b := Fingerprint(map[string]string{"seed": "7", "iterations": "1000"})
	c := Fingerprint(map[string]string{"seed": "8", "iterations": "1000"})

	if a != b {
		t.Errorf("Expected equal fingerprints, got %s and %s", a, b)
	}
	if a == c {
		t.Error("Expected different settings to produce different fingerprints")
	}
	if len(a.Short()) != 12 {
		t.Errorf("Expected 12-char short hash, got %q", a.Short())
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		fatal         bool
		unrecoverable bool
	}{
		{"zero drift", ErrZeroDrift, true, false},
		{"domain constructor", NewDomainError("drift_rate", 0), true, false},
		{"sample size", NewSampleSizeError(0), true, false},
		{"range", NewRangeError("drift_rate", 2, 1), true, false},
		{"unrecoverable", NewUnrecoverableError("zero drift estimate"), false, true},
		{"unrelated", errors.New("boom"), false, false},
	}

	for _, tt := range tests {
		if got := IsFatal(tt.err); got != tt.fatal {
			t.Errorf("%s: IsFatal = %v, want %v", tt.name, got, tt.fatal)
		}
		if got := IsUnrecoverable(tt.err); got != tt.unrecoverable {
			t.Errorf("%s: IsUnrecoverable = %v, want %v", tt.name, got, tt.unrecoverable)
		}
	}
}
