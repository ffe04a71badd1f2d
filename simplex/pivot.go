package simplex

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// NoIndex marks an absent column or row.
const NoIndex = -1

// DefaultTolerance is the magnitude below which a coefficient counts as zero.
const DefaultTolerance = 1e-9

// PricingRule selects how the entering column and ratio-test ties are chosen.
type PricingRule int

const (
	// Dantzig picks the most negative reduced cost and breaks ratio ties by
	// lowest row index.
	Dantzig PricingRule = iota
	// Bland picks the lowest eligible column index and breaks ratio ties by
	// lowest basic column index. It cannot cycle.
	Bland
)

func (p PricingRule) String() string {
	switch p {
	case Dantzig:
		return "dantzig"
	case Bland:
		return "bland"
	}
	return fmt.Sprintf("PricingRule(%d)", int(p))
}

// ParsePricingRule parses "dantzig" or "bland".
func ParsePricingRule(s string) (PricingRule, error) {
	switch s {
	case "", "dantzig":
		return Dantzig, nil
	case "bland":
		return Bland, nil
	}
	return Dantzig, fmt.Errorf("unknown pricing rule %q", s)
}

// PivotEngine chooses pivots and applies them.
type PivotEngine struct {
	Rule PricingRule
	Tol  float64
}

// EnteringColumn scans the objective row restricted to active. It returns
// false when no reduced cost is below -Tol, i.e. the phase is optimal.
func (e PivotEngine) EnteringColumn(t *Tableau, active []int) (int, bool) {
	col := NoIndex
	best := -e.Tol
	for _, j := range active {
		rc := t.ReducedCost(j)
		if e.Rule == Bland {
			if rc < -e.Tol && (col == NoIndex || j < col) {
				col = j
			}
			continue
		}
		if rc < best || (rc == best && col != NoIndex && j < col) {
			best = rc
			col = j
		}
	}
	return col, col != NoIndex
}

// LeavingRow runs the minimum-ratio test on col. It returns false when no row
// has a positive entry in col, i.e. the phase is unbounded.
func (e PivotEngine) LeavingRow(t *Tableau, col int) (int, bool) {
	row := NoIndex
	minRatio := math.Inf(1)
	for r := range t.NumRows {
		a := t.At(r, col)
		if a <= e.Tol {
			continue
		}
		rhs := t.RHS(r)
		if rhs < 0 {
			rhs = 0
		}
		ratio := rhs / a
		switch {
		case row == NoIndex || ratio < minRatio-e.Tol:
			row, minRatio = r, ratio
		case math.Abs(ratio-minRatio) <= e.Tol && e.Rule == Bland && t.Basis[r] < t.Basis[row]:
			row, minRatio = r, ratio
		}
	}
	return row, row != NoIndex
}

// Pivot makes col basic in row by Gauss-Jordan elimination. Entries whose
// magnitude drops below Tol are set to zero.
func (e PivotEngine) Pivot(t *Tableau, row, col int) {
	pivotRow := t.T.RawRowView(row)
	floats.Scale(1/pivotRow[col], pivotRow)
	pivotRow[col] = 1

	for r := 0; r <= t.NumRows; r++ {
		if r == row {
			continue
		}
		cur := t.T.RawRowView(r)
		if factor := cur[col]; factor != 0 {
			floats.AddScaled(cur, -factor, pivotRow)
		}
		cur[col] = 0
		for j, v := range cur {
			if math.Abs(v) < e.Tol {
				cur[j] = 0
			}
		}
	}
	for j, v := range pivotRow {
		if math.Abs(v) < e.Tol {
			pivotRow[j] = 0
		}
	}

	t.Basis[row] = col
}
