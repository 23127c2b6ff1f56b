package gdp_chart

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// Layout holds the pixel geometry and labels of the chart.
// DefaultLayout and the config loader fill it from the default tags.
type Layout struct {
	Width     float64 `mapstructure:"width" json:"width" default:"800" validate:"gt=0"`
	Height    float64 `mapstructure:"height" json:"height" default:"450" validate:"gt=0"`
	XPadding  float64 `mapstructure:"x_padding" json:"x_padding" default:"60" validate:"gte=0"`
	YPadding  float64 `mapstructure:"y_padding" json:"y_padding" default:"20" validate:"gte=0"`
	Margin    float64 `mapstructure:"margin" json:"margin" default:"50" validate:"gte=0"`
	TickCount int     `mapstructure:"tick_count" json:"tick_count" default:"10" validate:"gte=1,lte=50"`
	Title     string  `mapstructure:"title" json:"title" default:"Gross Domestic Product"`
	InfoText  string  `mapstructure:"info_text" json:"info_text" default:"More Information: http://www.bea.gov/national/pdf/nipaguid.pdf"`
	BarColor  string  `mapstructure:"bar_color" json:"bar_color" default:"#0000ff" validate:"hexcolor"`
}

const (
	// XDomainPadMonths extends the time domain past the last point so its bar is not clipped.
	XDomainPadMonths = 3

	OverlayTransition = 50 * time.Millisecond
	TooltipTransition = 200 * time.Millisecond
	TooltipOpacity    = 0.9
)

var layoutValidator = validator.New()

// DefaultLayout returns the 800x450 layout.
func DefaultLayout() Layout {
	var l Layout
	_ = defaults.Set(&l)
	return l
}

func (l Layout) Validate() error {
	if err := layoutValidator.Struct(l); err != nil {
		return fmt.Errorf("invalid chart layout: %w", err)
	}
	if l.XPadding >= l.Width {
		return fmt.Errorf("invalid chart layout: x_padding %.0f must be smaller than width %.0f", l.XPadding, l.Width)
	}
	if l.YPadding >= l.Height {
		return fmt.Errorf("invalid chart layout: y_padding %.0f must be smaller than height %.0f", l.YPadding, l.Height)
	}
	return nil
}

// CanvasWidth is the full drawing surface width including the right/bottom margin.
func (l Layout) CanvasWidth() float64 { return l.Width + l.Margin }

func (l Layout) CanvasHeight() float64 { return l.Height + l.Margin }
