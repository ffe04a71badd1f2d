package simplex

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"q.log/twophase/model"
)

// Tableau is the dense simplex tableau. Rows 0..NumRows-1 are constraints,
// row NumRows is the objective (reduced cost) row. Columns 0..NumCols-1 are
// variables, column NumCols is the rhs.
type Tableau struct {
	T *mat.Dense

	//Basis maps each constraint row to its basic column
	Basis []int

	NumRows int
	NumCols int
}

// NewTableau lays out [A | b] from the standard form with an empty objective row.
func NewTableau(sf *model.StandardForm) *Tableau {
	t := &Tableau{
		T:       mat.NewDense(sf.NumRows+1, sf.NumCols+1, nil),
		Basis:   append([]int(nil), sf.Basis...),
		NumRows: sf.NumRows,
		NumCols: sf.NumCols,
	}
	for r := range sf.NumRows {
		row := t.T.RawRowView(r)
		mat.Row(row[:sf.NumCols], r, sf.A)
		row[sf.NumCols] = sf.B[r]
	}
	return t
}

func (t *Tableau) At(r, c int) float64 {
	return t.T.At(r, c)
}

func (t *Tableau) RHS(r int) float64 {
	return t.T.At(r, t.NumCols)
}

func (t *Tableau) ReducedCost(c int) float64 {
	return t.T.At(t.NumRows, c)
}

// Value returns the objective value under the minimization convention.
func (t *Tableau) Value() float64 {
	return -t.T.At(t.NumRows, t.NumCols)
}

// SetObjective writes cost into the objective row and prices out the current
// basis, so every basic column ends up with a zero reduced cost.
func (t *Tableau) SetObjective(cost []float64) {
	obj := t.T.RawRowView(t.NumRows)
	copy(obj, cost)
	obj[t.NumCols] = 0
	for r, b := range t.Basis {
		if cb := cost[b]; cb != 0 {
			floats.AddScaled(obj, -cb, t.T.RawRowView(r))
		}
	}
}

// Snapshot returns an independent copy of the tableau contents.
func (t *Tableau) Snapshot() *mat.Dense {
	return mat.DenseCopyOf(t.T)
}

// CheckCanonical verifies that every basic column is a unit column, the
// objective row included.
func (t *Tableau) CheckCanonical(tol float64) error {
	for r, b := range t.Basis {
		for rr := 0; rr <= t.NumRows; rr++ {
			want := 0.0
			if rr == r {
				want = 1
			}
			if v := t.T.At(rr, b); math.Abs(v-want) > tol {
				return fmt.Errorf("%w: column %d basic in row %d has %v at row %d", ErrInternal, b, r, v, rr)
			}
		}
	}
	return nil
}

// Values returns the value of every column in the current basic solution.
func (t *Tableau) Values() []float64 {
	x := make([]float64, t.NumCols)
	for r, b := range t.Basis {
		x[b] = t.RHS(r)
	}
	return x
}
