package core

import "time"

type MetricStyle string

const (
	StyleBar       MetricStyle = "bar"
	StyleScatter   MetricStyle = "scatter"
	StyleLine      MetricStyle = "line"
	StyleHistogram MetricStyle = "histogram"
	StyleWaterfall MetricStyle = "waterfall"
)

// IndicatorMetric is one plotted line of an indicator.
type IndicatorMetric struct {
	Name   string
	Color  string
	Style  MetricStyle
	Values Series[float64]
}

// ChartIndicator groups metrics drawn together, either over price (Overlay) or in a pane.
type ChartIndicator struct {
	Time      []time.Time
	Metrics   []IndicatorMetric
	Overlay   bool
	GroupName string
	Warmup    int
}
