package stats

import (
	"math"
)

// XmRResult represents the output of a Process Behavior Chart analysis.
type XmRResult struct {
	Average     float64   `json:"average"`
	AmR         float64   `json:"averageMovingRange"`
	UNPL        float64   `json:"upperNaturalProcessLimit"`
	LNPL        float64   `json:"lowerNaturalProcessLimit"`
	Values      []float64 `json:"values"`
	MovingRange []float64 `json:"movingRanges"`
	Signals     []Signal  `json:"signals"`
}

// Signal represents a detected special cause variation.
type Signal struct {
	Index       int    `json:"index"`
	Key         string `json:"key"`
	Type        string `json:"type"` // "outlier", "shift"
	Description string `json:"description"`
}

// CalculateXmR performs the math for an Individuals and Moving Range chart.
func CalculateXmR(values []float64) XmRResult {
	return CalculateXmRWithKeys(values, nil)
}

// CalculateXmRWithKeys performs the math for an Individuals and Moving Range
// chart and binds keys to signals.
func CalculateXmRWithKeys(values []float64, keys []string) XmRResult {
	if len(values) == 0 {
		return XmRResult{Values: []float64{}, Signals: []Signal{}}
	}

	result := XmRResult{Values: values, Average: Mean(values)}

	if len(values) > 1 {
		mrSum := 0.0
		result.MovingRange = make([]float64, len(values)-1)
		for i := 0; i < len(values)-1; i++ {
			mr := math.Abs(values[i+1] - values[i])
			result.MovingRange[i] = mr
			mrSum += mr
		}
		result.AmR = mrSum / float64(len(values)-1)
	}

	// Wheeler's scaling constant for Individuals is 2.66.
	result.UNPL = result.Average + (2.66 * result.AmR)
	result.LNPL = math.Max(0, result.Average-(2.66*result.AmR))

	result.Signals = detectSignals(values, result.Average, result.UNPL, result.LNPL, keys)
	return result
}

// StabilityResult is the process behavior of weekly attendance.
type StabilityResult struct {
	Segment string    `json:"segment"`
	Weeks   []string  `json:"weeks"`
	XmR     XmRResult `json:"xmr"`
	// Status is "stable", "shifting" (a run on one side of the average) or
	// "unstable" (points outside the limits). "insufficient_data" below three weeks.
	Status string `json:"status"`
}

// MinStabilityWeeks is the fewest weeks a behavior chart is computed for.
const MinStabilityWeeks = 3

// WeeklyStability runs an XmR chart over the weekly core-day attendance
// percentages of w.
func (s *Snapshot) WeeklyStability(w Window, segTag string) (StabilityResult, error) {
	weeks, err := s.Weekly(w, segTag)
	if err != nil {
		return StabilityResult{}, err
	}
	_, seg, _ := s.Segment(segTag)

	res := StabilityResult{Segment: seg.Tag(), Weeks: make([]string, 0, len(weeks))}
	values := make([]float64, 0, len(weeks))
	for _, wk := range weeks {
		res.Weeks = append(res.Weeks, wk.Label)
		values = append(values, wk.Percentage)
	}

	res.XmR = CalculateXmRWithKeys(values, res.Weeks)
	res.XmR.UNPL = math.Min(100, Round1(res.XmR.UNPL))
	res.XmR.LNPL = Round1(res.XmR.LNPL)
	res.XmR.Average = Round1(res.XmR.Average)
	res.XmR.AmR = Round1(res.XmR.AmR)

	switch {
	case len(values) < MinStabilityWeeks:
		res.Status = "insufficient_data"
	case hasSignal(res.XmR.Signals, "outlier"):
		res.Status = "unstable"
	case hasSignal(res.XmR.Signals, "shift"):
		res.Status = "shifting"
	default:
		res.Status = "stable"
	}
	return res, nil
}

func hasSignal(signals []Signal, kind string) bool {
	for _, sg := range signals {
		if sg.Type == kind {
			return true
		}
	}
	return false
}

func detectSignals(values []float64, avg, unpl, lnpl float64, keys []string) []Signal {
	signals := []Signal{}
	keyAt := func(i int) string {
		if i < len(keys) {
			return keys[i]
		}
		return ""
	}

	for i, v := range values {
		if v > unpl {
			signals = append(signals, Signal{
				Index:       i,
				Key:         keyAt(i),
				Type:        "outlier",
				Description: "Point above Upper Natural Process Limit (UNPL)",
			})
		} else if v < lnpl {
			signals = append(signals, Signal{
				Index:       i,
				Key:         keyAt(i),
				Type:        "outlier",
				Description: "Point below Lower Natural Process Limit (LNPL)",
			})
		}
	}

	if len(values) >= 8 {
		side := 0
		count := 0
		for i, v := range values {
			currentSide := 0
			if v > avg {
				currentSide = 1
			} else if v < avg {
				currentSide = -1
			}

			if currentSide == side && currentSide != 0 {
				count++
			} else {
				side = currentSide
				count = 1
			}

			if count == 8 {
				signals = append(signals, Signal{
					Index:       i,
					Key:         keyAt(i),
					Type:        "shift",
					Description: "8 consecutive weeks on one side of the average (attendance shift)",
				})
			}
		}
	}

	return signals
}
