package gdp_chart

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var ErrBarOutOfRange = errors.New("bar index out of range")

// Bar is one rectangle of the chart, in canvas pixels.
type Bar struct {
	Index    int             `json:"index"`
	Date     time.Time       `json:"-"`
	DateText string          `json:"date"`
	GDP      decimal.Decimal `json:"gdp"`
	X        float64         `json:"x"`
	Y        float64         `json:"y"`
	Width    float64         `json:"width"`
	Height   float64         `json:"height"`
}

// Point returns the data point the bar was built from.
func (b Bar) Point() DataPoint {
	return DataPoint{Date: b.Date, DateText: b.DateText, GDP: b.GDP}
}

// Label is a free-standing text element.
type Label struct {
	ID     string  `json:"id,omitempty"`
	Class  string  `json:"class,omitempty"`
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Rotate float64 `json:"rotate,omitempty"`
}

// Scene is the complete, immutable description of one rendered chart.
// Renderers only read it.
type Scene struct {
	Layout  Layout   `json:"layout"`
	Dataset *Dataset `json:"-"`
	Scales  Scales   `json:"-"`
	Bars    []Bar    `json:"bars"`
	XAxis   Axis     `json:"x_axis"`
	YAxis   Axis     `json:"y_axis"`
	Title   Label    `json:"title"`
	Info    Label    `json:"info"`
}

// BuildScene validates the dataset and lays out bars, axes and labels.
func BuildScene(ds *Dataset, layout Layout) (*Scene, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	scales, err := BuildScales(ds.Points, layout)
	if err != nil {
		return nil, err
	}

	barWidth := layout.Width / float64(len(ds.Points))
	bars := make([]Bar, len(ds.Points))
	for i, p := range ds.Points {
		h := scales.Y.Map(p.Value())
		bars[i] = Bar{
			Index:    i,
			Date:     p.Date,
			DateText: p.DateText,
			GDP:      p.GDP,
			X:        scales.X.Map(p.Date),
			Y:        layout.Height - h,
			Width:    barWidth,
			Height:   h,
		}
	}

	return &Scene{
		Layout:  layout,
		Dataset: ds,
		Scales:  scales,
		Bars:    bars,
		XAxis:   buildXAxis(scales.X, layout),
		YAxis:   buildYAxis(scales.YAxis, layout),
		Title: Label{
			ID:     "title",
			Text:   layout.Title,
			X:      -200,
			Y:      layout.XPadding + 20,
			Rotate: -90,
		},
		Info: Label{
			Class: "info",
			Text:  layout.InfoText,
			X:     layout.Width/2 + 120,
			Y:     layout.Height + layout.Margin,
		},
	}, nil
}

func (s *Scene) Bar(index int) (Bar, error) {
	if index < 0 || index >= len(s.Bars) {
		return Bar{}, fmt.Errorf("%w: %d (have %d bars)", ErrBarOutOfRange, index, len(s.Bars))
	}
	return s.Bars[index], nil
}

// EnterStates precomputes the hover state of every bar, indexed like Bars.
func (s *Scene) EnterStates() []HoverState {
	states := make([]HoverState, len(s.Bars))
	for i, b := range s.Bars {
		states[i] = EnterState(b)
	}
	return states
}

// Surface is what one viewer draws on: a shared read-only scene plus its own hover layer.
type Surface struct {
	Scene *Scene
	Hover *Controller
}

func NewSurface(scene *Scene) *Surface {
	return &Surface{Scene: scene, Hover: NewController(scene)}
}

// Hover replays one pointer visit over bar index on a fresh surface and returns the
// state after entering and after leaving.
func (s *Scene) Hover(index int) (enter, leave HoverState, err error) {
	surface := NewSurface(s)
	enter, err = surface.Hover.Enter(index)
	if err != nil {
		return enter, enter, err
	}
	return enter, surface.Hover.Leave(), nil
}
