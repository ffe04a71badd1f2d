// Package batch solves independent linear programs concurrently.
package batch

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"q.log/twophase/model"
	"q.log/twophase/simplex"
)

// Outcome is the result of one program; exactly one of Result and Err is set.
type Outcome struct {
	Result *simplex.Result
	Err    error
}

// Solve runs every program through s with at most workers solves in flight.
// Outcomes are returned in input order and a failing program does not stop
// the others. Cancelling ctx makes the remaining solves fail.
func Solve(ctx context.Context, s *simplex.Solver, programs []model.LinearProgram, workers int, logger *zap.Logger) []Outcome {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers < 1 {
		workers = 1
	}

	outcomes := make([]Outcome, len(programs))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, lp := range programs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = Outcome{Err: err}
				return nil
			}
			res, err := s.Solve(ctx, lp)
			outcomes[i] = Outcome{Result: res, Err: err}
			if err != nil {
				logger.Debug("solve failed", zap.Int("program", i), zap.Error(err))
			} else {
				logger.Debug("solved", zap.Int("program", i), zap.String("status", string(res.Status)))
			}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}
