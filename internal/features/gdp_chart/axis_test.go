package gdp_chart

import (
	"testing"
	"time"
)

func TestTickStep(t *testing.T) {
	cases := []struct {
		start, stop float64
		count       int
		want        float64
	}{
		{0, 18064.7, 10, 2000},
		{0, 100, 10, 10},
		{0, 1, 10, 0.1},
		{0, 35, 10, 5},
		{5, 5, 10, 0},
	}
	for _, c := range cases {
		if got := tickStep(c.start, c.stop, c.count); got != c.want {
			t.Errorf("tickStep(%v, %v, %d) = %v, want %v", c.start, c.stop, c.count, got, c.want)
		}
	}
}

func TestLinearTicks(t *testing.T) {
	ticks := linearTicks(0, 18064.7, 10)
	if len(ticks) != 10 || ticks[0] != 0 || ticks[9] != 18000 {
		t.Fatalf("unexpected ticks %v", ticks)
	}

	small := linearTicks(0, 1, 5)
	want := []float64{0, 0.2, 0.4, 0.6, 0.8, 1}
	if len(small) != len(want) {
		t.Fatalf("unexpected ticks %v", small)
	}
	for i := range want {
		if small[i] != want[i] {
			t.Fatalf("tick %d: got %v want %v", i, small[i], want[i])
		}
	}

	if rev := linearTicks(10, 0, 2); rev[0] != 10 || rev[len(rev)-1] != 0 {
		t.Fatalf("expected descending ticks, got %v", rev)
	}
}

func TestFormatLinearTick(t *testing.T) {
	if got := formatLinearTick(18000, 2000); got != "18,000" {
		t.Errorf("got %q", got)
	}
	if got := formatLinearTick(0.4, 0.2); got != "0.4" {
		t.Errorf("got %q", got)
	}
}

func TestTimeTicksYears(t *testing.T) {
	start := time.Date(1947, 1, 1, 0, 0, 0, 0, time.UTC)
	stop := time.Date(2015, 10, 1, 0, 0, 0, 0, time.UTC)
	ticks := timeTicks(start, stop, 10)
	if len(ticks) != 14 {
		t.Fatalf("expected 14 five-year ticks, got %d: %v", len(ticks), ticks)
	}
	if ticks[0].Year() != 1950 || ticks[13].Year() != 2015 {
		t.Fatalf("unexpected extent %v .. %v", ticks[0], ticks[13])
	}
	if formatTimeTick(ticks[0]) != "1950" {
		t.Fatalf("unexpected label %q", formatTimeTick(ticks[0]))
	}
}

func TestTimeTicksShortSpan(t *testing.T) {
	start := time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)
	stop := time.Date(1950, 4, 1, 0, 0, 0, 0, time.UTC)
	ticks := timeTicks(start, stop, 10)
	if len(ticks) == 0 {
		t.Fatalf("expected ticks for a one-quarter span")
	}
	for _, tk := range ticks {
		if tk.Before(start) || tk.After(stop) {
			t.Fatalf("tick %v outside domain", tk)
		}
		if tk.Weekday() != time.Sunday {
			t.Fatalf("expected weekly ticks on Sundays, got %v", tk.Weekday())
		}
	}

	monthly := timeTicks(start, time.Date(1951, 1, 1, 0, 0, 0, 0, time.UTC), 10)
	if len(monthly) != 13 {
		t.Fatalf("expected 13 monthly ticks, got %d", len(monthly))
	}
	if formatTimeTick(monthly[1]) != "February" || formatTimeTick(monthly[0]) != "1950" {
		t.Fatalf("unexpected labels %q %q", formatTimeTick(monthly[0]), formatTimeTick(monthly[1]))
	}
}

func TestSceneAxes(t *testing.T) {
	layout := DefaultLayout()
	scene, err := BuildScene(dataset(t, "1947-01-01", "243.1", "2015-07-01", "18064.7"), layout)
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	if scene.XAxis.ID != XAxisID || scene.XAxis.TranslateY != layout.Height {
		t.Fatalf("unexpected x axis %+v", scene.XAxis)
	}
	if scene.YAxis.ID != YAxisID || scene.YAxis.TranslateX != layout.XPadding {
		t.Fatalf("unexpected y axis %+v", scene.YAxis)
	}
	zero := scene.YAxis.Ticks[0]
	if zero.Label != "0" || zero.Position != layout.Height {
		t.Fatalf("expected 0 tick at the bottom, got %+v", zero)
	}
	for _, tk := range scene.XAxis.Ticks {
		if tk.Position < layout.XPadding || tk.Position > layout.Width {
			t.Fatalf("x tick %+v outside range", tk)
		}
	}
}
