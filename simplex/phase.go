package simplex

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type phaseState int

const (
	running phaseState = iota
	optimal
	unbounded
)

func (s phaseState) String() string {
	return [...]string{"running", "optimal", "unbounded"}[s]
}

// phaseRunner drives one phase to optimality or unboundedness, pivoting the
// tableau in place and recording a trace entry per visited state.
type phaseRunner struct {
	phase   Phase
	t       *Tableau
	engine  PivotEngine
	active  []int
	maxIter int
	logger  *zap.Logger

	// objective converts the tableau value to the one shown in the trace.
	objective func(t *Tableau) float64

	// driveOut is consulted once pricing finds no improving column. It returns
	// a pivot that removes a zero-level artificial from the basis.
	driveOut   func(t *Tableau) (row, col int, ok bool)
	drivingOut bool

	iter  int
	trace []TraceEntry
}

func (p *phaseRunner) run(ctx context.Context) (phaseState, error) {
	for {
		entry := TraceEntry{
			Phase:      p.phase,
			Iteration:  p.iter,
			Tableau:    p.t.Snapshot(),
			Objective:  p.objective(p.t),
			Entering:   NoIndex,
			LeavingRow: NoIndex,
			Basis:      append([]int(nil), p.t.Basis...),
		}

		col, row, state := p.next()
		entry.Entering, entry.LeavingRow = col, row
		p.trace = append(p.trace, entry)
		if state != running {
			p.logger.Debug("phase finished",
				zap.Int("phase", int(p.phase)),
				zap.Stringer("state", state),
				zap.Int("iterations", p.iter),
				zap.Float64("objective", entry.Objective))
			return state, nil
		}

		if p.iter >= p.maxIter {
			return running, fmt.Errorf("%w: phase %d exceeded %d iterations", ErrDidNotConverge, p.phase, p.maxIter)
		}
		if err := ctx.Err(); err != nil {
			return running, fmt.Errorf("%w: phase %d stopped after %d iterations: %w", ErrDidNotConverge, p.phase, p.iter, err)
		}

		p.logger.Debug("pivot",
			zap.Int("phase", int(p.phase)),
			zap.Int("iteration", p.iter+1),
			zap.Int("entering", col),
			zap.Int("leaving_row", row),
			zap.Int("leaving", p.t.Basis[row]),
			zap.Float64("objective", entry.Objective))
		p.engine.Pivot(p.t, row, col)
		p.iter++
	}
}

// next picks the pivot to execute from the current tableau. A non-running
// state means the phase is over; for unbounded, col is the column that has
// no limiting row.
func (p *phaseRunner) next() (col, row int, state phaseState) {
	if !p.drivingOut {
		col, ok := p.engine.EnteringColumn(p.t, p.active)
		if ok {
			row, ok := p.engine.LeavingRow(p.t, col)
			if !ok {
				return col, NoIndex, unbounded
			}
			return col, row, running
		}
		if p.driveOut == nil {
			return NoIndex, NoIndex, optimal
		}
		p.drivingOut = true
	}
	if row, col, ok := p.driveOut(p.t); ok {
		return col, row, running
	}
	return NoIndex, NoIndex, optimal
}
