package stats

import (
	"fmt"
	"math"
	"time"
)

// TimeOfDay is a wall-clock time as seconds since midnight.
type TimeOfDay int

// TimeOfDayOf returns the local wall-clock time of t.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// Minutes returns whole minutes since midnight; seconds are dropped.
func (t TimeOfDay) Minutes() float64 {
	return float64(int(t) / 60)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/3600, (int(t)%3600)/60)
}

// MarshalText implements encoding.TextMarshaler.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// FormatMinutes renders minutes since midnight as HH:MM, rounding to the
// nearest minute.
func FormatMinutes(m float64) string {
	total := int(math.Round(m))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// ArrivalStats summarises first-arrival times over a set of days.
type ArrivalStats struct {
	Days          int      `json:"days"`
	MedianMinutes *float64 `json:"medianMinutes,omitempty"`
	TrimmedMean   *float64 `json:"trimmedMeanMinutes,omitempty"`
	Excluded      int      `json:"excludedDays"`
	Median        string   `json:"median,omitempty"`
	Mean          string   `json:"mean,omitempty"`
}

// CalculateArrivalStats computes the median and the trimmed mean of
// minutes-since-midnight values. Days further than threshold minutes from the
// median are excluded from the mean; if every day is excluded the mean is nil.
func CalculateArrivalStats(minutes []float64, threshold float64) ArrivalStats {
	res := ArrivalStats{Days: len(minutes)}
	if len(minutes) == 0 {
		return res
	}

	median := CalculateMedianContinuous(minutes)
	res.MedianMinutes = &median
	res.Median = FormatMinutes(median)

	sum, kept := 0.0, 0
	for _, m := range minutes {
		if math.Abs(m-median) > threshold {
			res.Excluded++
			continue
		}
		sum += m
		kept++
	}
	if kept == 0 {
		return res
	}

	mean := sum / float64(kept)
	res.TrimmedMean = &mean
	res.Mean = FormatMinutes(mean)
	return res
}
