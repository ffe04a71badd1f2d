package instance

import (
	"fmt"
	"math"
	"runtime"

	"github.com/lukpank/go-glpk/glpk"
	"q.log/twophase/model"
)

// Reader reads a fixed-format mps file into a linear program
type Reader struct {
	filename string
	maximize bool
}

// NewReader returns a reader for filename. MPS carries no objective sense,
// so the caller chooses it.
func NewReader(filename string, maximize bool) *Reader {
	return &Reader{
		filename: filename,
		maximize: maximize,
	}
}

// Read loads the file. Ranged rows become a ">=" and a "<=" constraint and
// column bounds other than x >= 0 become extra constraints.
func (r *Reader) Read() (model.LinearProgram, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	lp := glpk.New()
	defer lp.Delete()
	if err := lp.ReadMPS(glpk.MPS_FILE, nil, r.filename); err != nil {
		return model.LinearProgram{}, fmt.Errorf("read mps %s: %w", r.filename, err)
	}

	numCols := lp.NumCols()
	m := model.LinearProgram{Maximize: r.maximize}

	//populate obj function
	for c := 1; c <= numCols; c++ {
		m.Objective = append(m.Objective, lp.ObjCoef(c))
	}

	//populate constraints
	for row := 1; row <= lp.NumRows(); row++ {
		rowVec := make([]float64, numCols)
		idxs, vals := lp.MatRow(row)
		for i, v := range idxs {
			if v == 0 {
				continue
			}
			rowVec[v-1] = vals[i]
		}

		lb, ub := lp.RowLB(row), lp.RowUB(row)
		switch {
		case lb == -math.MaxFloat64 && ub == math.MaxFloat64:
			// free row
			continue
		case lb == -math.MaxFloat64:
			m.AddLe(rowVec, ub)
		case ub == math.MaxFloat64:
			m.AddGe(rowVec, lb)
		case lb == ub:
			m.AddEq(rowVec, lb)
		default:
			m.AddGe(rowVec, lb)
			m.AddLe(append([]float64(nil), rowVec...), ub)
		}
	}

	//column bounds
	for c := 1; c <= numCols; c++ {
		lb, ub := lp.ColLB(c), lp.ColUB(c)
		if lb < 0 {
			return model.LinearProgram{}, fmt.Errorf("%w: column %d has lower bound %v, only x >= 0 is supported",
				model.ErrInvalidProgram, c, lb)
		}
		if lb > 0 {
			m.AddGe(unitRow(numCols, c-1), lb)
		}
		if ub != math.MaxFloat64 {
			m.AddLe(unitRow(numCols, c-1), ub)
		}
	}

	return m, nil
}

func unitRow(n, j int) []float64 {
	row := make([]float64, n)
	row[j] = 1
	return row
}
