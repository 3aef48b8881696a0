package optimizer

import (
	"context"
	"fmt"
	"math"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/logger"
	"github.com/spf13/cast"
)

var _ core.Optimizer = (*GridSearch)(nil)

// GridSearch evaluates the cartesian product of every parameter's values.
type GridSearch struct {
	parameters    []core.Parameter
	maxIterations int
	parallelism   int
	log           logger.Logger
}

// NewGridSearch creates a new grid search over the parameters of config
func NewGridSearch(config *Config) (*GridSearch, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	return &GridSearch{
		parameters:    config.Parameters,
		maxIterations: config.MaxIterations,
		parallelism:   config.Parallelism,
		log:           config.Logger,
	}, nil
}

// SetParameters replaces the parameters to search
func (g *GridSearch) SetParameters(params []core.Parameter) error {
	if len(params) == 0 {
		return fmt.Errorf("at least one parameter must be provided")
	}
	g.parameters = params
	return nil
}

// SetMaxIterations caps the number of combinations evaluated
func (g *GridSearch) SetMaxIterations(iterations int) {
	g.maxIterations = iterations
}

// SetParallelism sets the number of concurrent evaluations
func (g *GridSearch) SetParallelism(n int) {
	g.parallelism = n
}

// Optimize evaluates the grid, truncated to the maximum iterations, and
// returns the results sorted best first.
func (g *GridSearch) Optimize(ctx context.Context, evaluator core.Evaluator, targetMetric core.MetricName,
	maximize bool) ([]*core.OptimizerResult, error) {

	if evaluator == nil {
		return nil, fmt.Errorf("evaluator cannot be nil")
	}

	sets, err := g.parameterSets()
	if err != nil {
		return nil, err
	}

	if g.maxIterations > 0 && len(sets) > g.maxIterations {
		logf(g.log, "limiting parameter combinations from %d to %d", len(sets), g.maxIterations)
		sets = sets[:g.maxIterations]
	}

	logf(g.log, "starting grid search with %d parameter combinations", len(sets))
	results, err := evaluate(ctx, evaluator, sets, g.parallelism, g.log)
	if err != nil {
		return nil, err
	}

	SortResults(results, targetMetric, maximize)
	logf(g.log, "grid search completed with %d results", len(results))
	return results, nil
}

// parameterSets builds every combination, varying the last parameter fastest.
func (g *GridSearch) parameterSets() ([]core.ParameterSet, error) {
	sets := []core.ParameterSet{{}}

	for _, param := range g.parameters {
		values, err := gridValues(param)
		if err != nil {
			return nil, err
		}

		next := make([]core.ParameterSet, 0, len(sets)*len(values))
		for _, set := range sets {
			for _, value := range values {
				combined := set.Clone()
				combined[param.Name] = value
				next = append(next, combined)
			}
		}
		sets = next
	}

	return sets, nil
}

func gridValues(param core.Parameter) ([]any, error) {
	switch param.Type {
	case core.TypeInt:
		return intValues(param)
	case core.TypeFloat:
		return floatValues(param)
	case core.TypeBool:
		return []any{true, false}, nil
	case core.TypeString, core.TypeCategorical:
		if len(param.Options) == 0 {
			return nil, fmt.Errorf("parameter %s of type %s must have options", param.Name, param.Type)
		}
		return param.Options, nil
	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", param.Type)
	}
}

func intValues(param core.Parameter) ([]any, error) {
	min, err := cast.ToIntE(param.Min)
	if err != nil || param.Min == nil {
		return nil, fmt.Errorf("parameter %s min value must be an integer", param.Name)
	}
	max, err := cast.ToIntE(param.Max)
	if err != nil || param.Max == nil {
		return nil, fmt.Errorf("parameter %s max value must be an integer", param.Name)
	}

	step := 1
	if param.Step != nil {
		if step, err = cast.ToIntE(param.Step); err != nil {
			return nil, fmt.Errorf("parameter %s step value must be an integer", param.Name)
		}
	}
	if step <= 0 {
		return nil, fmt.Errorf("parameter %s step value must be positive", param.Name)
	}

	var values []any
	for i := min; i <= max; i += step {
		values = append(values, i)
	}
	return values, nil
}

// floatValues steps by index so that rounding never skips the upper bound.
func floatValues(param core.Parameter) ([]any, error) {
	min, err := cast.ToFloat64E(param.Min)
	if err != nil || param.Min == nil {
		return nil, fmt.Errorf("parameter %s min value must be a float", param.Name)
	}
	max, err := cast.ToFloat64E(param.Max)
	if err != nil || param.Max == nil {
		return nil, fmt.Errorf("parameter %s max value must be a float", param.Name)
	}
	step, err := cast.ToFloat64E(param.Step)
	if err != nil || param.Step == nil {
		return nil, fmt.Errorf("parameter %s step value must be a float", param.Name)
	}
	if step <= 0 {
		return nil, fmt.Errorf("parameter %s step value must be positive", param.Name)
	}

	const epsilon = 1e-9
	var values []any
	for i := 0; ; i++ {
		v := min + float64(i)*step
		if v > max+epsilon {
			break
		}
		values = append(values, math.Round(v*1e9)/1e9)
	}
	return values, nil
}
