// Package api is the request/response boundary of the solver: it decodes
// loosely typed problem payloads, normalizes them into a model.LinearProgram
// and turns every outcome, failures included, into a Response.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
	"q.log/twophase/model"
	"q.log/twophase/simplex"
)

const (
	StatusError          = "error"
	StatusDidNotConverge = "did_not_converge"
)

// Request is the problem payload collected by the input form.
type Request struct {
	ObjectiveCoefficients []Number   `json:"objective_coefficients" yaml:"objective_coefficients" validate:"required,min=1"`
	ConstraintMatrix      [][]Number `json:"constraint_matrix"      yaml:"constraint_matrix"      validate:"required,min=1,dive,required"`
	RHSValues             []Number   `json:"rhs_values"             yaml:"rhs_values"             validate:"required,min=1"`
	ConstraintSigns       []string   `json:"constraint_signs"       yaml:"constraint_signs"       validate:"required,min=1,dive,required"`
	// Maximize defaults to true when absent.
	Maximize *bool `json:"maximize" yaml:"maximize"`
}

// Iteration is one trace entry as sent to the renderer.
type Iteration struct {
	Phase      int         `json:"phase"`
	Iter       *int        `json:"iter,omitempty"`
	Tableau    [][]float64 `json:"tableau"`
	Obj        float64     `json:"obj"`
	Entering   *int        `json:"entering,omitempty"`
	LeavingRow *int        `json:"leaving_row,omitempty"`
	Basis      []int       `json:"basis"`
}

type Response struct {
	Status         string      `json:"status"`
	Message        string      `json:"message"`
	ObjectiveValue *float64    `json:"objective_value"`
	Variables      []float64   `json:"variables"`
	Columns        []string    `json:"columns,omitempty"`
	Iterations     []Iteration `json:"iterations"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ReadRequest decodes a JSON or YAML request.
func ReadRequest(r io.Reader) (*Request, error) {
	var req Request
	if err := yaml.NewDecoder(r).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty request", model.ErrInvalidProgram)
		}
		return nil, fmt.Errorf("%w: malformed request: %w", model.ErrInvalidProgram, err)
	}
	return &req, nil
}

// Validate checks that every field is present and that the per-constraint
// fields agree in length.
func (req *Request) Validate() error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = describe(fe)
			}
			return fmt.Errorf("%w: %s", model.ErrInvalidProgram, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %w", model.ErrInvalidProgram, err)
	}
	m := len(req.ConstraintMatrix)
	if len(req.RHSValues) != m || len(req.ConstraintSigns) != m {
		return fmt.Errorf("%w: constraint dimensions mismatch: %d rows, %d rhs values, %d signs",
			model.ErrInvalidProgram, m, len(req.RHSValues), len(req.ConstraintSigns))
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("missing required field %s", fe.Field())
	case "min":
		return fmt.Sprintf("%s must have at least %s element(s)", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}

// Program converts a validated request into a linear program.
func (req *Request) Program() (model.LinearProgram, error) {
	lp := model.LinearProgram{
		Objective: toFloats(req.ObjectiveCoefficients),
		Maximize:  req.Maximize == nil || *req.Maximize,
	}
	for i, row := range req.ConstraintMatrix {
		rel, err := model.ParseRelation(req.ConstraintSigns[i])
		if err != nil {
			return model.LinearProgram{}, fmt.Errorf("constraint %d: %w", i+1, err)
		}
		lp.Constraints = append(lp.Constraints, model.Constraint{
			Coefficients: toFloats(row),
			Relation:     rel,
			RHS:          float64(req.RHSValues[i]),
		})
	}
	return lp, lp.Validate()
}

// Solve runs req through s. It never fails: every error is reported through
// the response status and message.
func Solve(ctx context.Context, s *simplex.Solver, req *Request) Response {
	if err := req.Validate(); err != nil {
		return ErrorResponse(err)
	}
	lp, err := req.Program()
	if err != nil {
		return ErrorResponse(err)
	}
	res, err := s.Solve(ctx, lp)
	if err != nil {
		return ErrorResponse(err)
	}
	return FromResult(res)
}

// Handle decodes a request from r and solves it.
func Handle(ctx context.Context, s *simplex.Solver, r io.Reader) Response {
	req, err := ReadRequest(r)
	if err != nil {
		return ErrorResponse(err)
	}
	return Solve(ctx, s, req)
}

// ErrorResponse maps a solve error to its boundary status.
func ErrorResponse(err error) Response {
	resp := Response{Status: StatusError, Iterations: []Iteration{}}
	switch {
	case errors.Is(err, model.ErrInvalidProgram):
		resp.Message = err.Error()
	case errors.Is(err, simplex.ErrDidNotConverge):
		resp.Status = StatusDidNotConverge
		resp.Message = err.Error()
	default:
		resp.Message = "internal solver error"
	}
	return resp
}

// FromResult converts a solver result into a response.
func FromResult(res *simplex.Result) Response {
	resp := Response{
		Status:     string(res.Status),
		Message:    res.Message,
		Iterations: make([]Iteration, 0, len(res.Trace)),
	}
	for _, col := range res.Columns {
		resp.Columns = append(resp.Columns, col.Label)
	}
	if res.IsOptimal() {
		obj := res.Objective
		resp.ObjectiveValue = &obj
		resp.Variables = append([]float64{}, res.Values...)
	}
	for _, e := range res.Trace {
		resp.Iterations = append(resp.Iterations, iteration(e))
	}
	return resp
}

func iteration(e simplex.TraceEntry) Iteration {
	rows, _ := e.Tableau.Dims()
	it := Iteration{
		Phase:   int(e.Phase),
		Tableau: make([][]float64, rows),
		Obj:     e.Objective,
		Basis:   append([]int{}, e.Basis...),
	}
	for r := range rows {
		it.Tableau[r] = mat.Row(nil, r, e.Tableau)
	}
	if !e.IsInitial() {
		it.Iter = intPtr(e.Iteration)
	}
	if e.Entering != simplex.NoIndex {
		it.Entering = intPtr(e.Entering)
	}
	if e.LeavingRow != simplex.NoIndex {
		it.LeavingRow = intPtr(e.LeavingRow)
	}
	return it
}

func intPtr(v int) *int {
	return &v
}
