// Package optimizer searches strategy parameter spaces by running backtests.
package optimizer

import (
	"fmt"
	"sort"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/logger"
	"github.com/raykavin/stratbook/pkg/strategy"
	"github.com/samber/lo"
)

// Config holds the settings shared by every search algorithm.
type Config struct {
	Parameters    []core.Parameter
	MaxIterations int
	Parallelism   int
	Logger        logger.Logger
	TargetMetric  core.MetricName
	Maximize      bool
	TopN          int
	// Seed makes random search reproducible; zero picks a time based seed.
	Seed int64
}

// NewConfig creates a new optimizer configuration with default values
func NewConfig() *Config {
	return &Config{
		MaxIterations: 100,
		Parallelism:   1,
		TargetMetric:  core.MetricProfit,
		Maximize:      true,
		TopN:          5,
	}
}

// WithParameters sets the parameters to optimize
func (c *Config) WithParameters(params ...core.Parameter) *Config {
	c.Parameters = append(c.Parameters, params...)
	return c
}

// WithMaxIterations sets the maximum number of evaluations
func (c *Config) WithMaxIterations(iterations int) *Config {
	c.MaxIterations = iterations
	return c
}

// WithParallelism sets the number of concurrent evaluations
func (c *Config) WithParallelism(n int) *Config {
	c.Parallelism = n
	return c
}

// WithLogger sets the logger used to report progress
func (c *Config) WithLogger(log logger.Logger) *Config {
	c.Logger = log
	return c
}

// WithTargetMetric sets the metric to rank results by and its direction
func (c *Config) WithTargetMetric(metric core.MetricName, maximize bool) *Config {
	c.TargetMetric = metric
	c.Maximize = maximize
	return c
}

// WithTopN sets how many of the best results are reported
func (c *Config) WithTopN(n int) *Config {
	c.TopN = n
	return c
}

// WithSeed fixes the random source, for reproducible searches
func (c *Config) WithSeed(seed int64) *Config {
	c.Seed = seed
	return c
}

func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if len(c.Parameters) == 0 {
		return fmt.Errorf("at least one parameter must be provided")
	}
	return nil
}

// ValidateParameterSet checks that every definition has a value and that the
// values match the types and ranges of their definitions.
func ValidateParameterSet(params core.ParameterSet, definitions []core.Parameter) error {
	for _, def := range definitions {
		if _, ok := params[def.Name]; !ok {
			return fmt.Errorf("%w: missing parameter %s", core.ErrInvalidParameter, def.Name)
		}
	}
	_, err := strategy.Validate(definitions, params)
	return err
}

// Searchable keeps the parameters a search can vary: booleans, parameters with
// options and numeric parameters with both bounds. When names are given only
// those parameters are kept.
func Searchable(params []core.Parameter, names ...string) []core.Parameter {
	return lo.Filter(params, func(p core.Parameter, _ int) bool {
		if len(names) > 0 && !lo.Contains(names, p.Name) {
			return false
		}
		switch p.Type {
		case core.TypeBool:
			return true
		case core.TypeInt, core.TypeFloat:
			return p.Min != nil && p.Max != nil
		default:
			return len(p.Options) > 0
		}
	})
}

// ResultSorter orders results by one metric. Results missing the metric sort last.
type ResultSorter struct {
	Results    []*core.OptimizerResult
	MetricName string
	Maximize   bool
}

// Len implements sort.Interface.
func (s ResultSorter) Len() int { return len(s.Results) }

// Swap implements sort.Interface.
func (s ResultSorter) Swap(i, j int) { s.Results[i], s.Results[j] = s.Results[j], s.Results[i] }

// Less orders results by the target metric, best first
func (s ResultSorter) Less(i, j int) bool {
	valueI, okI := s.Results[i].Metrics[s.MetricName]
	valueJ, okJ := s.Results[j].Metrics[s.MetricName]
	if okI != okJ {
		return okI
	}

	if s.Maximize {
		return valueI > valueJ
	}
	return valueI < valueJ
}

// SortResults sorts results in place, best first.
func SortResults(results []*core.OptimizerResult, metric core.MetricName, maximize bool) {
	sort.Stable(ResultSorter{Results: results, MetricName: string(metric), Maximize: maximize})
}
