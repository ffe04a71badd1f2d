package simplex

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"q.log/twophase/model"
)

var (
	// ErrInternal signals a broken engine invariant, never a property of the input.
	ErrInternal = errors.New("simplex: internal error")
	// ErrDidNotConverge is returned when the iteration cap or the caller's
	// deadline is hit before a phase terminates.
	ErrDidNotConverge = errors.New("simplex: did not converge")
)

type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusInfeasible Status = "infeasible"
	StatusUnbounded  Status = "unbounded"
)

type Phase int

const (
	PhaseOne Phase = 1
	PhaseTwo Phase = 2
)

// TraceEntry is a snapshot of the tableau taken before a pivot, or after the
// last one. Entering and LeavingRow describe the pivot executed from this
// snapshot and are NoIndex when none was.
type TraceEntry struct {
	Phase Phase
	//Iteration is the number of pivots done in this phase, 0 for the initial snapshot
	Iteration  int
	Tableau    *mat.Dense
	Objective  float64
	Entering   int
	LeavingRow int
	Basis      []int
}

func (e TraceEntry) IsInitial() bool {
	return e.Iteration == 0
}

func (e TraceEntry) HasPivot() bool {
	return e.Entering != NoIndex && e.LeavingRow != NoIndex
}

// Result is the outcome of a solve. Objective, Values and ColumnValues are
// only meaningful when Status is StatusOptimal.
type Result struct {
	Status    Status
	Objective float64
	Values    []float64
	Trace     []TraceEntry
	Message   string

	Columns      []model.Column
	ColumnValues []float64

	Phase1Iterations int
	Phase2Iterations int
}

func (r *Result) IsOptimal() bool {
	return r.Status == StatusOptimal
}

func (r *Result) IsInfeasible() bool {
	return r.Status == StatusInfeasible
}

func (r *Result) IsUnbounded() bool {
	return r.Status == StatusUnbounded
}

// Value returns the value of variable index, 0 when out of range.
func (r *Result) Value(index int) float64 {
	if index < 0 || index >= len(r.Values) {
		return 0
	}
	return r.Values[index]
}
