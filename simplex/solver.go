// Package simplex implements a dense-tableau two-phase simplex method that
// records every tableau it visits.
package simplex

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"q.log/twophase/model"
)

// DefaultMaxIterations caps the pivots of a single phase.
const DefaultMaxIterations = 10000

type Option func(*Solver)

// WithTolerance sets the magnitude below which numbers count as zero.
func WithTolerance(tol float64) Option {
	return func(s *Solver) {
		if tol > 0 {
			s.tol = tol
		}
	}
}

// WithMaxIterations sets the pivot cap of each phase.
func WithMaxIterations(n int) Option {
	return func(s *Solver) {
		if n > 0 {
			s.maxIter = n
		}
	}
}

func WithPricingRule(rule PricingRule) Option {
	return func(s *Solver) {
		s.rule = rule
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Solver) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Solver holds solve settings only. It is safe for concurrent use; every call
// to Solve works on its own tableau and trace.
type Solver struct {
	tol     float64
	maxIter int
	rule    PricingRule
	logger  *zap.Logger
}

func New(opts ...Option) *Solver {
	s := &Solver{
		tol:     DefaultTolerance,
		maxIter: DefaultMaxIterations,
		rule:    Dantzig,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Solver) Tolerance() float64 {
	return s.tol
}

// Solve runs phase 1 when the standard form needs artificial variables, then
// phase 2 on the original objective. An infeasible or unbounded program is
// reported through Result.Status; errors are reserved for invalid input
// (model.ErrInvalidProgram), exhausted budgets (ErrDidNotConverge) and broken
// invariants (ErrInternal).
func (s *Solver) Solve(ctx context.Context, lp model.LinearProgram) (*Result, error) {
	sf, err := model.Standardize(lp)
	if err != nil {
		return nil, err
	}

	t := NewTableau(sf)
	engine := PivotEngine{Rule: s.rule, Tol: s.tol}
	res := &Result{Columns: sf.Columns}

	if sf.HasArtificials() {
		all := make([]int, sf.NumCols)
		for j := range all {
			all[j] = j
		}
		t.SetObjective(sf.Phase1Cost)
		p1 := &phaseRunner{
			phase:     PhaseOne,
			t:         t,
			engine:    engine,
			active:    all,
			maxIter:   s.maxIter,
			logger:    s.logger,
			objective: func(t *Tableau) float64 { return s.clean(t.Value()) },
			driveOut:  s.artificialExit(sf),
		}
		state, err := p1.run(ctx)
		res.Trace = p1.trace
		res.Phase1Iterations = p1.iter
		if err != nil {
			return nil, err
		}
		if state == unbounded {
			return nil, fmt.Errorf("%w: phase 1 is unbounded", ErrInternal)
		}
		if w := t.Value(); w > s.tol {
			res.Status = StatusInfeasible
			res.Message = fmt.Sprintf("Problem is infeasible (phase 1 objective %g > 0)", w)
			s.logger.Debug("infeasible", zap.Float64("phase1_objective", w))
			return res, nil
		}
	}

	var active []int
	for j := range sf.NumCols {
		if !sf.IsArtificial(j) {
			active = append(active, j)
		}
	}
	t.SetObjective(sf.Phase2Cost)
	p2 := &phaseRunner{
		phase:   PhaseTwo,
		t:       t,
		engine:  engine,
		active:  active,
		maxIter: s.maxIter,
		logger:  s.logger,
		objective: func(t *Tableau) float64 {
			return s.clean(s.originalSense(t.Value(), lp.Maximize))
		},
	}
	state, err := p2.run(ctx)
	res.Trace = append(res.Trace, p2.trace...)
	res.Phase2Iterations = p2.iter
	if err != nil {
		return nil, err
	}
	if err := t.CheckCanonical(s.tol); err != nil {
		return nil, err
	}

	if state == unbounded {
		last := p2.trace[len(p2.trace)-1]
		res.Status = StatusUnbounded
		res.Message = fmt.Sprintf("Problem is unbounded (%s can increase without limit)", sf.Columns[last.Entering].Label)
		return res, nil
	}

	res.Status = StatusOptimal
	res.Objective = s.clean(s.originalSense(t.Value(), lp.Maximize))
	res.ColumnValues = t.Values()
	for j, v := range res.ColumnValues {
		res.ColumnValues[j] = s.clean(v)
	}
	res.Values = append([]float64(nil), res.ColumnValues[:sf.NumVars]...)
	res.Message = fmt.Sprintf("Optimal solution found after %d iterations", res.Phase1Iterations+res.Phase2Iterations)
	return res, nil
}

// artificialExit finds a pivot that replaces a basic artificial with a
// non-artificial column. It only fires once phase 1 reached zero, where every
// basic artificial sits at zero level and the pivot element may be negative.
func (s *Solver) artificialExit(sf *model.StandardForm) func(t *Tableau) (int, int, bool) {
	return func(t *Tableau) (int, int, bool) {
		if t.Value() > s.tol {
			return NoIndex, NoIndex, false
		}
		for r, b := range t.Basis {
			if !sf.IsArtificial(b) {
				continue
			}
			for j := range t.NumCols {
				if !sf.IsArtificial(j) && math.Abs(t.At(r, j)) > s.tol {
					return r, j, true
				}
			}
		}
		return NoIndex, NoIndex, false
	}
}

func (s *Solver) originalSense(v float64, maximize bool) float64 {
	if maximize {
		return -v
	}
	return v
}

// clean maps values within tolerance of zero, including -0, to 0.
func (s *Solver) clean(v float64) float64 {
	if math.Abs(v) < s.tol {
		return 0
	}
	return v
}
