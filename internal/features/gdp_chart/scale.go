package gdp_chart

import (
	"math"
	"time"
)

// LinearScale maps [D0, D1] onto [R0, R1].
// A degenerate domain (D0 == D1) maps everything to R0.
type LinearScale struct {
	D0, D1 float64
	R0, R1 float64
}

func NewLinearScale(d0, d1, r0, r1 float64) LinearScale {
	return LinearScale{D0: d0, D1: d1, R0: r0, R1: r1}
}

func (s LinearScale) Map(v float64) float64 {
	if s.D1 == s.D0 {
		return s.R0
	}
	return s.R0 + (v-s.D0)/(s.D1-s.D0)*(s.R1-s.R0)
}

func (s LinearScale) Invert(px float64) float64 {
	if s.R1 == s.R0 {
		return s.D0
	}
	return s.D0 + (px-s.R0)/(s.R1-s.R0)*(s.D1-s.D0)
}

func (s LinearScale) Domain() (float64, float64) { return s.D0, s.D1 }

func (s LinearScale) Range() (float64, float64) { return s.R0, s.R1 }

// Ticks returns roughly count nicely rounded values inside the domain.
func (s LinearScale) Ticks(count int) []float64 {
	return linearTicks(s.D0, s.D1, count)
}

// TimeScale maps [D0, D1] onto [R0, R1] linearly in milliseconds.
type TimeScale struct {
	D0, D1 time.Time
	R0, R1 float64
}

func NewTimeScale(d0, d1 time.Time, r0, r1 float64) TimeScale {
	return TimeScale{D0: d0, D1: d1, R0: r0, R1: r1}
}

func (s TimeScale) linear() LinearScale {
	return LinearScale{
		D0: float64(s.D0.UnixMilli()),
		D1: float64(s.D1.UnixMilli()),
		R0: s.R0,
		R1: s.R1,
	}
}

func (s TimeScale) Map(t time.Time) float64 {
	return s.linear().Map(float64(t.UnixMilli()))
}

func (s TimeScale) Invert(px float64) time.Time {
	ms := s.linear().Invert(px)
	return time.UnixMilli(int64(math.Round(ms))).In(s.D0.Location())
}

func (s TimeScale) Domain() (time.Time, time.Time) { return s.D0, s.D1 }

func (s TimeScale) Range() (float64, float64) { return s.R0, s.R1 }

func (s TimeScale) Ticks(count int) []time.Time {
	return timeTicks(s.D0, s.D1, count)
}

// Scales bundles the three scales a chart needs.
type Scales struct {
	X     TimeScale   // date -> horizontal position
	Y     LinearScale // value -> bar height, range [0, Height-YPadding]
	YAxis LinearScale // value -> vertical tick position, inverted range [Height, YPadding]
}

// BuildScales scans points once for the date extent and the maximum value.
// The time domain is padded by XDomainPadMonths past the latest date.
func BuildScales(points []DataPoint, layout Layout) (Scales, error) {
	if len(points) == 0 {
		return Scales{}, ErrEmptyDataset
	}

	minDate, maxDate := points[0].Date, points[0].Date
	maxValue := points[0].Value()
	for _, p := range points[1:] {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}
		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
		if v := p.Value(); v > maxValue {
			maxValue = v
		}
	}
	if maxValue < 0 {
		maxValue = 0
	}
	maxDate = maxDate.AddDate(0, XDomainPadMonths, 0)

	return Scales{
		X:     NewTimeScale(minDate, maxDate, layout.XPadding, layout.Width),
		Y:     NewLinearScale(0, maxValue, 0, layout.Height-layout.YPadding),
		YAxis: NewLinearScale(0, maxValue, layout.Height, layout.YPadding),
	}, nil
}
