package optimizer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/logger"
)

// evaluate runs the evaluator over every parameter set with at most
// parallelism evaluations in flight. The first error stops scheduling new
// evaluations; the ones already running are waited for.
func evaluate(ctx context.Context, evaluator core.Evaluator, sets []core.ParameterSet,
	parallelism int, log logger.Logger) ([]*core.OptimizerResult, error) {

	if parallelism < 1 {
		parallelism = 1
	}

	var (
		results   []*core.OptimizerResult
		mu        sync.Mutex
		wg        sync.WaitGroup
		errCh     = make(chan error, 1)
		semaphore = make(chan struct{}, parallelism)
	)

	fail := func(err error) {
		select {
		case errCh <- err:
		default:
		}
	}

schedule:
	for i, params := range sets {
		if err := ctx.Err(); err != nil {
			fail(err)
			break
		}

		select {
		case <-ctx.Done():
			fail(ctx.Err())
			break schedule
		case semaphore <- struct{}{}:
		}

		if len(errCh) > 0 {
			<-semaphore
			break
		}

		wg.Add(1)
		go func(index int, params core.ParameterSet) {
			defer wg.Done()
			defer func() { <-semaphore }()

			logf(log, "evaluating parameter set %d/%d", index+1, len(sets))
			start := time.Now()

			result, err := evaluator.Evaluate(ctx, params)
			if err != nil {
				fail(fmt.Errorf("evaluation error: %w", err))
				return
			}

			if result.ID == "" {
				result.ID = uuid.NewString()
			}
			if result.Parameters == nil {
				result.Parameters = params
			}
			if result.Duration == 0 {
				result.Duration = time.Since(start)
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		}(i, params)
	}

	wg.Wait()

	select {
	case err := <-errCh:
		return results, err
	default:
		return results, nil
	}
}

func logf(log logger.Logger, format string, args ...any) {
	if log != nil {
		log.Infof(format, args...)
	}
}
