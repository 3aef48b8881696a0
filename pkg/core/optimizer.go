package core

import (
	"context"
	"time"
)

// Evaluator scores one parameter set, usually by running a full backtest.
type Evaluator interface {
	Evaluate(ctx context.Context, params ParameterSet) (*OptimizerResult, error)
}

// Optimizer searches a parameter space for the sets that score best on a metric.
type Optimizer interface {
	Optimize(ctx context.Context, evaluator Evaluator, targetMetric MetricName, maximize bool) ([]*OptimizerResult, error)
	SetParameters(params []Parameter) error
	SetMaxIterations(iterations int)
	SetParallelism(n int)
}

// StrategyEvaluator is implemented by strategies that expose tunable parameters.
type StrategyEvaluator interface {
	GetParameters() []Parameter
	SetParameterValues(params ParameterSet) error
}

// ParameterSet maps parameter names to concrete values.
type ParameterSet map[string]any

// Clone returns a shallow copy of the set.
func (p ParameterSet) Clone() ParameterSet {
	out := make(ParameterSet, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

type MetricName string

const (
	MetricProfit       MetricName = "profit"
	MetricWinRate      MetricName = "win_rate"
	MetricPayoff       MetricName = "payoff"
	MetricProfitFactor MetricName = "profit_factor"
	MetricSQN          MetricName = "sqn"
	MetricDrawdown     MetricName = "drawdown"
	MetricTradeCount   MetricName = "trade_count"
)

type ParameterType string

const (
	TypeInt         ParameterType = "int"
	TypeFloat       ParameterType = "float"
	TypeBool        ParameterType = "bool"
	TypeString      ParameterType = "string"
	TypeCategorical ParameterType = "categorical"
)

// Parameter describes one tunable value of a strategy. Min, Max and Step bound
// numeric types; Options enumerates categorical values.
type Parameter struct {
	Name        string
	Description string
	Default     any
	Min         any
	Max         any
	Step        any
	Options     []any
	Type        ParameterType
}

// OptimizerResult is the outcome of evaluating one parameter set.
type OptimizerResult struct {
	ID         string
	Parameters ParameterSet
	Metrics    map[string]float64
	Duration   time.Duration
}
