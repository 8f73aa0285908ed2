package stats

import (
	"testing"
)

func TestCalculateMedianContinuous(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"Empty", []float64{}, 0},
		{"SingleItem", []float64{5.5}, 5.5},
		{"OddCount", []float64{1.1, 3.3, 2.2, 4.4, 5.5}, 3.3},
		{"EvenCount", []float64{1.1, 2.2, 3.3, 4.4}, 2.75},
		{"Unsorted", []float64{10.5, 2.5, 8.5, 4.5, 6.5}, 6.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateMedianContinuous(tt.values); got != tt.expected {
				t.Errorf("CalculateMedianContinuous() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name              string
		present, eligible float64
		expected          float64
	}{
		{"NobodyEligible", 3, 0, 0},
		{"Half", 1, 2, 50},
		{"RoundsToOneDecimal", 1, 3, 33.3},
		{"RoundsUp", 2, 3, 66.7},
		{"Full", 4, 4, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percentage(tt.present, tt.eligible); got != tt.expected {
				t.Errorf("Percentage(%v, %v) = %v, want %v", tt.present, tt.eligible, got, tt.expected)
			}
		})
	}
}
