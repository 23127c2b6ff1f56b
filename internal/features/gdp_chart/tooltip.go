package gdp_chart

import (
	"fmt"
	"time"
)

// Quarter is a calendar quarter label, Q1..Q4.
type Quarter string

// QuarterOf buckets the month of t: Jan-Mar Q1, Apr-Jun Q2, Jul-Sep Q3, Oct-Dec Q4.
func QuarterOf(t time.Time) Quarter {
	return Quarter(fmt.Sprintf("Q%d", (int(t.Month())-1)/3+1))
}

// Overlay is the highlighted box drawn over the hovered bar.
// Positions share the chart's coordinate space, so Left/Top equal the bar's x/y.
type Overlay struct {
	Opacity    float64 `json:"opacity"`
	Left       float64 `json:"left"`
	Top        float64 `json:"top"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	DurationMs int64   `json:"duration_ms"`
}

// Tooltip is the text box describing the hovered bar.
type Tooltip struct {
	Opacity    float64  `json:"opacity"`
	Left       float64  `json:"left"`
	Top        float64  `json:"top"`
	DataDate   string   `json:"data_date,omitempty"`
	Lines      []string `json:"lines,omitempty"`
	DurationMs int64    `json:"duration_ms"`
}

// HoverState is the full visual state of the hover layer.
type HoverState struct {
	Active  bool    `json:"active"`
	Bar     int     `json:"bar"`
	Overlay Overlay `json:"overlay"`
	Tooltip Tooltip `json:"tooltip"`
}

// HiddenState is the initial state: both elements transparent.
func HiddenState() HoverState {
	return HoverState{
		Bar:     -1,
		Overlay: Overlay{DurationMs: OverlayTransition.Milliseconds()},
		Tooltip: Tooltip{DurationMs: TooltipTransition.Milliseconds()},
	}
}

// TooltipLines returns the two tooltip rows for a point, e.g. "1947 Q1" and "243.1 Billion".
func TooltipLines(p DataPoint) []string {
	return []string{
		fmt.Sprintf("%d %s", p.Date.Year(), QuarterOf(p.Date)),
		fmt.Sprintf("%s Billion", p.GDP.String()),
	}
}

// EnterState computes the state after the pointer enters bar. It does not depend on
// the previous state.
func EnterState(bar Bar) HoverState {
	return HoverState{
		Active: true,
		Bar:    bar.Index,
		Overlay: Overlay{
			Opacity:    1,
			Left:       bar.X,
			Top:        bar.Y,
			Width:      bar.Width,
			Height:     bar.Height,
			DurationMs: OverlayTransition.Milliseconds(),
		},
		Tooltip: Tooltip{
			Opacity:    TooltipOpacity,
			Left:       bar.X,
			Top:        bar.Y + bar.Height/2,
			DataDate:   bar.DateText,
			Lines:      TooltipLines(bar.Point()),
			DurationMs: TooltipTransition.Milliseconds(),
		},
	}
}

// LeaveState fades both elements out and keeps their last geometry and text.
func LeaveState(prev HoverState) HoverState {
	next := prev
	next.Active = false
	next.Overlay.Opacity = 0
	next.Overlay.DurationMs = OverlayTransition.Milliseconds()
	next.Tooltip.Opacity = 0
	next.Tooltip.DurationMs = TooltipTransition.Milliseconds()
	return next
}

// Controller tracks the hover layer of one drawing surface.
// It is not safe for concurrent use; each surface viewer owns its own controller.
type Controller struct {
	scene *Scene
	state HoverState
}

func NewController(scene *Scene) *Controller {
	return &Controller{scene: scene, state: HiddenState()}
}

func (c *Controller) State() HoverState { return c.state }

// Enter moves the overlay onto bar index and shows the tooltip.
func (c *Controller) Enter(index int) (HoverState, error) {
	bar, err := c.scene.Bar(index)
	if err != nil {
		return c.state, err
	}
	c.state = EnterState(bar)
	return c.state, nil
}

// Leave hides overlay and tooltip.
func (c *Controller) Leave() HoverState {
	c.state = LeaveState(c.state)
	return c.state
}
