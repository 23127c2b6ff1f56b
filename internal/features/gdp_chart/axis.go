package gdp_chart

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

type Orientation string

const (
	OrientBottom Orientation = "bottom"
	OrientLeft   Orientation = "left"

	XAxisID = "x-axis"
	YAxisID = "y-axis"

	// TickSize is the length of a tick mark in pixels.
	TickSize = 6.0
)

// Tick is one labelled mark, Position is along the axis in scale range units.
type Tick struct {
	Position float64 `json:"position"`
	Label    string  `json:"label"`
}

// Axis is a rendered-ready axis: a translated group with a domain line and ticks.
type Axis struct {
	ID          string      `json:"id"`
	Orientation Orientation `json:"orientation"`
	TranslateX  float64     `json:"translate_x"`
	TranslateY  float64     `json:"translate_y"`
	RangeStart  float64     `json:"range_start"`
	RangeEnd    float64     `json:"range_end"`
	Ticks       []Tick      `json:"ticks"`
}

func buildXAxis(s TimeScale, layout Layout) Axis {
	values := s.Ticks(layout.TickCount)
	ticks := make([]Tick, 0, len(values))
	for _, t := range values {
		ticks = append(ticks, Tick{Position: s.Map(t), Label: formatTimeTick(t)})
	}
	r0, r1 := s.Range()
	return Axis{
		ID:          XAxisID,
		Orientation: OrientBottom,
		TranslateX:  0,
		TranslateY:  layout.Height,
		RangeStart:  r0,
		RangeEnd:    r1,
		Ticks:       ticks,
	}
}

func buildYAxis(s LinearScale, layout Layout) Axis {
	d0, d1 := s.Domain()
	step := tickStep(d0, d1, layout.TickCount)
	values := s.Ticks(layout.TickCount)
	ticks := make([]Tick, 0, len(values))
	for _, v := range values {
		ticks = append(ticks, Tick{Position: s.Map(v), Label: formatLinearTick(v, step)})
	}
	r0, r1 := s.Range()
	return Axis{
		ID:          YAxisID,
		Orientation: OrientLeft,
		TranslateX:  layout.XPadding,
		TranslateY:  0,
		RangeStart:  r0,
		RangeEnd:    r1,
		Ticks:       ticks,
	}
}

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// tickStep rounds (stop-start)/count to 1, 2 or 5 times a power of ten.
func tickStep(start, stop float64, count int) float64 {
	if count <= 0 {
		return 0
	}
	step := math.Abs(stop-start) / float64(count)
	if step == 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return 0
	}
	power := math.Floor(math.Log10(step))
	rel := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case rel >= e10:
		factor = 10
	case rel >= e5:
		factor = 5
	case rel >= e2:
		factor = 2
	}
	return factor * math.Pow(10, power)
}

func linearTicks(start, stop float64, count int) []float64 {
	if count <= 0 {
		return nil
	}
	if start == stop {
		return []float64{start}
	}
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}
	step := tickStep(start, stop, count)
	if step == 0 {
		return nil
	}

	var ticks []float64
	if step >= 1 {
		for i := math.Ceil(start / step); i <= math.Floor(stop/step); i++ {
			ticks = append(ticks, i*step)
		}
	} else {
		inv := math.Round(1 / step)
		for i := math.Ceil(start * inv); i <= math.Floor(stop*inv); i++ {
			ticks = append(ticks, i/inv)
		}
	}

	if reverse {
		for i, j := 0, len(ticks)-1; i < j; i, j = i+1, j-1 {
			ticks[i], ticks[j] = ticks[j], ticks[i]
		}
	}
	return ticks
}

// formatLinearTick prints v with thousands separators and just enough decimals for step.
func formatLinearTick(v, step float64) string {
	precision := 0
	if step > 0 {
		precision = int(math.Max(0, -math.Floor(math.Log10(step))))
	}
	if precision == 0 {
		return humanize.Comma(int64(math.Round(v)))
	}
	return humanize.CommafWithDigits(v, precision)
}

type timeUnit int

const (
	unitDay timeUnit = iota
	unitWeek
	unitMonth
	unitYear
)

const day = 24 * time.Hour

type tickInterval struct {
	unit   timeUnit
	step   int
	approx time.Duration
}

var tickIntervals = []tickInterval{
	{unitDay, 1, day},
	{unitDay, 2, 2 * day},
	{unitWeek, 1, 7 * day},
	{unitMonth, 1, 30 * day},
	{unitMonth, 3, 90 * day},
	{unitYear, 1, 365 * day},
}

func chooseInterval(start, stop time.Time, count int) tickInterval {
	target := stop.Sub(start) / time.Duration(count)

	i := 0
	for i < len(tickIntervals) && tickIntervals[i].approx <= target {
		i++
	}
	switch {
	case i == len(tickIntervals):
		step := tickStep(fractionalYear(start), fractionalYear(stop), count)
		return tickInterval{unit: unitYear, step: int(math.Max(1, math.Round(step))), approx: 365 * day}
	case i == 0:
		return tickIntervals[0]
	}

	lo, hi := tickIntervals[i-1], tickIntervals[i]
	if float64(target)/float64(lo.approx) < float64(hi.approx)/float64(target) {
		return lo
	}
	return hi
}

func fractionalYear(t time.Time) float64 {
	return float64(t.Year()) + float64(t.YearDay()-1)/365
}

// timeTicks returns calendar-aligned instants in [start, stop].
func timeTicks(start, stop time.Time, count int) []time.Time {
	if count <= 0 || stop.Before(start) {
		return nil
	}
	if stop.Equal(start) {
		return []time.Time{start}
	}

	iv := chooseInterval(start, stop, count)
	loc := start.Location()
	midnight := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)

	var cur time.Time
	var next func(time.Time) time.Time
	var keep func(time.Time) bool

	switch iv.unit {
	case unitDay:
		cur = midnight
		next = func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }
		keep = func(t time.Time) bool { return (t.Day()-1)%iv.step == 0 }
	case unitWeek:
		cur = midnight.AddDate(0, 0, -int(midnight.Weekday()))
		next = func(t time.Time) time.Time { return t.AddDate(0, 0, 7) }
		keep = func(time.Time) bool { return true }
	case unitMonth:
		cur = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, loc)
		next = func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }
		keep = func(t time.Time) bool { return (int(t.Month())-1)%iv.step == 0 }
	default:
		cur = time.Date(start.Year(), time.January, 1, 0, 0, 0, 0, loc)
		next = func(t time.Time) time.Time { return t.AddDate(1, 0, 0) }
		keep = func(t time.Time) bool { return t.Year()%iv.step == 0 }
	}

	var ticks []time.Time
	for ; !cur.After(stop); cur = next(cur) {
		if cur.Before(start) || !keep(cur) {
			continue
		}
		ticks = append(ticks, cur)
	}
	return ticks
}

func formatTimeTick(t time.Time) string {
	switch {
	case t.Month() == time.January && t.Day() == 1:
		return t.Format("2006")
	case t.Day() == 1:
		return t.Format("January")
	default:
		return t.Format("Jan 02")
	}
}
