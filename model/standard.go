package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Kind is the semantic kind of a standard-form column.
type Kind int

const (
	Structural Kind = iota
	Slack
	Surplus
	Artificial
)

func (k Kind) String() string {
	switch k {
	case Structural:
		return "structural"
	case Slack:
		return "slack"
	case Surplus:
		return "surplus"
	case Artificial:
		return "artificial"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Column describes one column of the standard form.
type Column struct {
	Kind Kind
	//Row is the originating constraint, -1 for structural columns
	Row   int
	Label string
}

// StandardForm is a LinearProgram rewritten as A x = b, x >= 0, b >= 0 with
// slack, surplus and artificial columns appended after the structural ones.
type StandardForm struct {
	//A constraints matrix, NumRows x NumCols
	A *mat.Dense

	//B constraints rhs, all non-negative
	B []float64

	Columns []Column

	//Basis holds the initially basic column of every row
	Basis []int

	//Flipped marks rows that were multiplied by -1 to make the rhs non-negative
	Flipped []bool

	//Phase1Cost is 1 on artificial columns and 0 elsewhere
	Phase1Cost []float64

	//Phase2Cost is the objective under the minimization convention
	Phase2Cost []float64

	NumVars int
	NumRows int
	NumCols int
}

// Standardize builds the standard form of lp. Negative right-hand sides are
// flipped before auxiliary columns are injected, so a ">=" row with a
// negative rhs becomes a "<=" row with a slack.
func Standardize(lp LinearProgram) (*StandardForm, error) {
	if err := lp.Validate(); err != nil {
		return nil, err
	}

	n := lp.NumVars()
	m := len(lp.Constraints)
	sf := &StandardForm{
		A:       mat.NewDense(m, n, nil),
		B:       make([]float64, m),
		Basis:   make([]int, m),
		Flipped: make([]bool, m),
		NumVars: n,
		NumRows: m,
		NumCols: n,
	}
	for j := range n {
		sf.Columns = append(sf.Columns, Column{Kind: Structural, Row: -1, Label: fmt.Sprintf("x%d", j+1)})
	}

	relations := make([]Relation, m)
	for r, c := range lp.Constraints {
		sf.A.SetRow(r, c.Coefficients)
		sf.B[r] = c.RHS
		relations[r] = c.Relation
		if c.RHS < 0 {
			sf.multiplyConstraint(r, -1)
			sf.Flipped[r] = true
			relations[r] = relations[r].Flip()
		}
	}

	for r, rel := range relations {
		switch rel {
		case LessEq:
			sf.Basis[r] = sf.addCol(Slack, r, 1)
		case GreaterEq:
			sf.addCol(Surplus, r, -1)
			sf.Basis[r] = sf.addCol(Artificial, r, 1)
		case Equal:
			sf.Basis[r] = sf.addCol(Artificial, r, 1)
		}
	}

	sf.Phase1Cost = make([]float64, sf.NumCols)
	sf.Phase2Cost = make([]float64, sf.NumCols)
	for j, col := range sf.Columns {
		switch col.Kind {
		case Artificial:
			sf.Phase1Cost[j] = 1
		case Structural:
			sf.Phase2Cost[j] = lp.Objective[j]
			if lp.Maximize {
				sf.Phase2Cost[j] = -lp.Objective[j]
			}
		}
	}

	return sf, nil
}

// addCol appends a unit-like column with coef in row and returns its index.
func (sf *StandardForm) addCol(kind Kind, row int, coef float64) int {
	colVec := make([]float64, sf.NumRows)
	colVec[row] = coef

	sf.A = mat.DenseCopyOf(sf.A.Grow(0, 1))
	sf.A.SetCol(sf.NumCols, colVec)

	prefix := map[Kind]string{Slack: "s", Surplus: "e", Artificial: "a"}[kind]
	sf.Columns = append(sf.Columns, Column{Kind: kind, Row: row, Label: fmt.Sprintf("%s%d", prefix, row+1)})

	sf.NumCols++
	return sf.NumCols - 1
}

func (sf *StandardForm) multiplyConstraint(row int, mul float64) {
	_, cols := sf.A.Dims()
	for col := range cols {
		sf.A.Set(row, col, sf.A.At(row, col)*mul)
	}
	sf.B[row] *= mul
}

// IsArtificial reports whether column j is an artificial variable.
func (sf *StandardForm) IsArtificial(j int) bool {
	return sf.Columns[j].Kind == Artificial
}

// Artificials returns the indexes of all artificial columns.
func (sf *StandardForm) Artificials() []int {
	var idx []int
	for j, col := range sf.Columns {
		if col.Kind == Artificial {
			idx = append(idx, j)
		}
	}
	return idx
}

func (sf *StandardForm) HasArtificials() bool {
	return len(sf.Artificials()) > 0
}

// Labels returns the column labels in column order.
func (sf *StandardForm) Labels() []string {
	labels := make([]string, len(sf.Columns))
	for j, col := range sf.Columns {
		labels[j] = col.Label
	}
	return labels
}
