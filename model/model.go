package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidProgram is returned when a linear program is malformed or has
// inconsistent dimensions.
var ErrInvalidProgram = errors.New("invalid program")

// Relation is the relational sign of a constraint.
type Relation int

const (
	LessEq Relation = iota
	GreaterEq
	Equal
)

func (r Relation) String() string {
	switch r {
	case LessEq:
		return "<="
	case GreaterEq:
		return ">="
	case Equal:
		return "="
	}
	return fmt.Sprintf("Relation(%d)", int(r))
}

// Flip returns the relation obtained by multiplying both sides by -1.
func (r Relation) Flip() Relation {
	switch r {
	case LessEq:
		return GreaterEq
	case GreaterEq:
		return LessEq
	}
	return r
}

// ParseRelation parses a constraint sign as typed in a form or a file.
func ParseRelation(s string) (Relation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "<=", "≤", "=<", "le":
		return LessEq, nil
	case ">=", "≥", "=>", "ge":
		return GreaterEq, nil
	case "=", "==", "eq":
		return Equal, nil
	}
	return 0, fmt.Errorf("%w: unknown constraint sign %q", ErrInvalidProgram, s)
}

type Constraint struct {
	Coefficients []float64
	Relation     Relation
	RHS          float64
}

// LinearProgram is a general LP over non-negative variables:
//
//	max/min  Objective · x
//	s.t.     Constraints[i].Coefficients · x  (<= | >= | =)  Constraints[i].RHS
//	         x >= 0
type LinearProgram struct {
	//Objective function coefficients, one per variable
	Objective []float64

	Maximize bool

	Constraints []Constraint
}

func (lp *LinearProgram) NumVars() int {
	return len(lp.Objective)
}

// AddLe adds the constraint coeffs · x <= rhs.
func (lp *LinearProgram) AddLe(coeffs []float64, rhs float64) {
	lp.Constraints = append(lp.Constraints, Constraint{Coefficients: coeffs, Relation: LessEq, RHS: rhs})
}

// AddGe adds the constraint coeffs · x >= rhs.
func (lp *LinearProgram) AddGe(coeffs []float64, rhs float64) {
	lp.Constraints = append(lp.Constraints, Constraint{Coefficients: coeffs, Relation: GreaterEq, RHS: rhs})
}

// AddEq adds the constraint coeffs · x = rhs.
func (lp *LinearProgram) AddEq(coeffs []float64, rhs float64) {
	lp.Constraints = append(lp.Constraints, Constraint{Coefficients: coeffs, Relation: Equal, RHS: rhs})
}

// Validate checks the dimensions and values of the program. Every error it
// returns wraps ErrInvalidProgram.
func (lp *LinearProgram) Validate() error {
	n := lp.NumVars()
	if n == 0 {
		return fmt.Errorf("%w: objective has no coefficients", ErrInvalidProgram)
	}
	if len(lp.Constraints) == 0 {
		return fmt.Errorf("%w: no constraints", ErrInvalidProgram)
	}
	for j, v := range lp.Objective {
		if !finite(v) {
			return fmt.Errorf("%w: objective coefficient %d is not a finite number", ErrInvalidProgram, j+1)
		}
	}
	for i, c := range lp.Constraints {
		if len(c.Coefficients) != n {
			return fmt.Errorf("%w: constraint %d has %d coefficients, want %d",
				ErrInvalidProgram, i+1, len(c.Coefficients), n)
		}
		for j, v := range c.Coefficients {
			if !finite(v) {
				return fmt.Errorf("%w: coefficient %d of constraint %d is not a finite number",
					ErrInvalidProgram, j+1, i+1)
			}
		}
		if !finite(c.RHS) {
			return fmt.Errorf("%w: right-hand side of constraint %d is not a finite number", ErrInvalidProgram, i+1)
		}
		if c.Relation < LessEq || c.Relation > Equal {
			return fmt.Errorf("%w: constraint %d has unknown relation %v", ErrInvalidProgram, i+1, c.Relation)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
