package stats

import (
	"testing"
	"time"
)

func TestCalculateArrivalStats(t *testing.T) {
	tests := []struct {
		name       string
		minutes    []float64
		wantMedian string
		wantMean   string
		excluded   int
		meanNil    bool
	}{
		{"Empty", nil, "", "", 0, true},
		{"NoOutliers", []float64{540, 600}, "09:30", "09:30", 0, false},
		{"LateOutlierExcluded", []float64{540, 550, 560, 900}, "09:15", "09:10", 1, false},
		{"AllExcluded", []float64{0, 1000}, "08:20", "", 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateArrivalStats(tt.minutes, 120)
			if got.Days != len(tt.minutes) {
				t.Errorf("Days = %d", got.Days)
			}
			if got.Median != tt.wantMedian || got.Mean != tt.wantMean {
				t.Errorf("median/mean = %q/%q, want %q/%q", got.Median, got.Mean, tt.wantMedian, tt.wantMean)
			}
			if got.Excluded != tt.excluded {
				t.Errorf("Excluded = %d, want %d", got.Excluded, tt.excluded)
			}
			if (got.TrimmedMean == nil) != tt.meanNil {
				t.Errorf("TrimmedMean nil = %v, want %v", got.TrimmedMean == nil, tt.meanNil)
			}
		})
	}
}

func TestTrimmedMeanEqualsMeanWithoutExclusions(t *testing.T) {
	minutes := []float64{530, 545, 562, 571, 590}
	got := CalculateArrivalStats(minutes, 120)
	if got.Excluded != 0 || got.TrimmedMean == nil {
		t.Fatalf("unexpected exclusions: %+v", got)
	}
	if *got.TrimmedMean != Mean(minutes) {
		t.Errorf("trimmed mean %v != mean %v", *got.TrimmedMean, Mean(minutes))
	}
}

func TestTimeOfDay(t *testing.T) {
	tod := TimeOfDayOf(time.Date(2024, 6, 12, 9, 10, 45, 0, time.UTC))
	if tod.String() != "09:10" {
		t.Errorf("String = %s", tod)
	}
	if tod.Minutes() != 550 {
		t.Errorf("Minutes = %v, want 550", tod.Minutes())
	}
	if FormatMinutes(549.6) != "09:10" {
		t.Errorf("FormatMinutes rounding = %s", FormatMinutes(549.6))
	}
}
