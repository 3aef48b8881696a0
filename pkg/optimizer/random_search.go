package optimizer

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/logger"
	"github.com/spf13/cast"
)

var _ core.Optimizer = (*RandomSearch)(nil)

// RandomSearch evaluates MaxIterations parameter sets drawn uniformly from
// the parameter ranges.
type RandomSearch struct {
	parameters    []core.Parameter
	maxIterations int
	parallelism   int
	log           logger.Logger
	rng           *rand.Rand
}

// NewRandomSearch creates a new random search over the parameters of config
func NewRandomSearch(config *Config) (*RandomSearch, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &RandomSearch{
		parameters:    config.Parameters,
		maxIterations: config.MaxIterations,
		parallelism:   config.Parallelism,
		log:           config.Logger,
		rng:           rand.New(rand.NewSource(seed)),
	}, nil
}

// SetParameters replaces the parameters to search
func (r *RandomSearch) SetParameters(params []core.Parameter) error {
	if len(params) == 0 {
		return fmt.Errorf("at least one parameter must be provided")
	}
	r.parameters = params
	return nil
}

// SetMaxIterations sets the number of random samples
func (r *RandomSearch) SetMaxIterations(iterations int) {
	r.maxIterations = iterations
}

// SetParallelism sets the number of concurrent evaluations
func (r *RandomSearch) SetParallelism(n int) {
	r.parallelism = n
}

// Optimize evaluates random parameter sets and returns the best results
func (r *RandomSearch) Optimize(ctx context.Context, evaluator core.Evaluator, targetMetric core.MetricName,
	maximize bool) ([]*core.OptimizerResult, error) {

	if evaluator == nil {
		return nil, fmt.Errorf("evaluator cannot be nil")
	}

	sets := make([]core.ParameterSet, r.maxIterations)
	for i := range sets {
		sets[i] = r.parameterSet()
	}

	logf(r.log, "starting random search with %d iterations", len(sets))
	results, err := evaluate(ctx, evaluator, sets, r.parallelism, r.log)
	if err != nil {
		return nil, err
	}

	SortResults(results, targetMetric, maximize)
	logf(r.log, "random search completed with %d results", len(results))
	return results, nil
}

func (r *RandomSearch) parameterSet() core.ParameterSet {
	set := make(core.ParameterSet, len(r.parameters))
	for _, param := range r.parameters {
		set[param.Name] = r.value(param)
	}
	return set
}

// value draws a value for param, falling back to its default when the range
// is incomplete.
func (r *RandomSearch) value(param core.Parameter) any {
	switch param.Type {
	case core.TypeInt:
		if param.Min == nil || param.Max == nil {
			return param.Default
		}
		min, max := cast.ToInt(param.Min), cast.ToInt(param.Max)
		if min >= max {
			return min
		}
		return min + r.rng.Intn(max-min+1)

	case core.TypeFloat:
		if param.Min == nil || param.Max == nil {
			return param.Default
		}
		min, max := cast.ToFloat64(param.Min), cast.ToFloat64(param.Max)
		if min >= max {
			return min
		}
		return min + r.rng.Float64()*(max-min)

	case core.TypeBool:
		return r.rng.Intn(2) == 1

	case core.TypeString, core.TypeCategorical:
		if len(param.Options) == 0 {
			return param.Default
		}
		return param.Options[r.rng.Intn(len(param.Options))]
	}

	return param.Default
}
