package gdp_chart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the date format used by the upstream dataset.
const DateLayout = "2006-01-02"

var (
	ErrEmptyDataset  = errors.New("dataset has no data points")
	ErrNegativeValue = errors.New("dataset contains a negative value")
)

// DataPoint is one quarterly GDP observation.
// On the wire it is the pair ["1947-01-01", 243.1].
type DataPoint struct {
	Date     time.Time
	DateText string
	GDP      decimal.Decimal
}

// NewDataPoint parses date (YYYY-MM-DD) and wraps value.
func NewDataPoint(date string, value decimal.Decimal) (DataPoint, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return DataPoint{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return DataPoint{Date: t, DateText: date, GDP: value}, nil
}

// Value is the GDP as float64 for scaling.
func (p DataPoint) Value() float64 {
	return p.GDP.InexactFloat64()
}

func (p *DataPoint) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("data point must be a [date, value] array: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("data point must have 2 elements, got %d", len(pair))
	}

	var date string
	if err := json.Unmarshal(pair[0], &date); err != nil {
		return fmt.Errorf("data point date: %w", err)
	}
	if bytes.Equal(bytes.TrimSpace(pair[1]), []byte("null")) {
		return fmt.Errorf("data point %s has null value", date)
	}
	var value decimal.Decimal
	if err := value.UnmarshalJSON(pair[1]); err != nil {
		return fmt.Errorf("data point %s value: %w", date, err)
	}

	parsed, err := NewDataPoint(date, value)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p DataPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.DateText, json.Number(p.GDP.String())})
}

// Dataset is the upstream GDP document. Only Points is required for rendering;
// the rest is descriptive metadata shown in captions and the API.
type Dataset struct {
	Name        string      `json:"name,omitempty"`
	SourceName  string      `json:"source_name,omitempty"`
	Description string      `json:"description,omitempty"`
	DisplayURL  string      `json:"display_url,omitempty"`
	FromDate    string      `json:"from_date,omitempty"`
	ToDate      string      `json:"to_date,omitempty"`
	Points      []DataPoint `json:"data"`
}

// Validate checks the invariants the scene relies on.
func (d *Dataset) Validate() error {
	if d == nil || len(d.Points) == 0 {
		return ErrEmptyDataset
	}
	for _, p := range d.Points {
		if p.GDP.IsNegative() {
			return fmt.Errorf("%w: %s = %s", ErrNegativeValue, p.DateText, p.GDP.String())
		}
	}
	return nil
}

// Latest returns the point with the greatest date.
func (d *Dataset) Latest() (DataPoint, bool) {
	if d == nil || len(d.Points) == 0 {
		return DataPoint{}, false
	}
	latest := d.Points[0]
	for _, p := range d.Points[1:] {
		if p.Date.After(latest.Date) {
			latest = p
		}
	}
	return latest, true
}

// DecodeDataset parses a GDP JSON document and validates it.
func DecodeDataset(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to decode GDP dataset: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}
