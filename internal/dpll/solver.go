// Package dpll implements the recursive DPLL search procedure: it assigns
// decision literals, delegates constraint propagation to an inference
// engine, and backtracks chronologically on conflict until the formula is
// proved satisfiable or unsatisfiable.
package dpll

import (
	"context"
	"fmt"

	"github.com/kr/pretty"
	"github.com/pkg/errors"

	"github.com/cigdemahmet27/logic-and-computabilitiy-p4/internal/engine"
	"github.com/cigdemahmet27/logic-and-computabilitiy-p4/internal/sat"
	"github.com/cigdemahmet27/logic-and-computabilitiy-p4/internal/trace"
)

// Status is the terminal result of a search.
type Status int8

const (
	Satisfiable Status = iota
	Unsatisfiable
)

func (s Status) String() string {
	if s == Satisfiable {
		return "SATISFIABLE"
	}
	return "UNSATISFIABLE"
}

// Outcome is the terminal result of the whole procedure together with its
// search statistics.
type Outcome struct {
	Status     Status
	Model      []bool // complete witness assignment, nil unless satisfiable
	Decisions  int64
	Backtracks int64
}

type Options struct {
	// Verbose dumps the trail to stdout at every decision.
	Verbose bool
}

var DefaultOptions = Options{
	Verbose: false,
}

// Solver drives one search over one formula. It owns the assignment, the
// trail, and the trace recorder for the lifetime of that search; a new
// formula needs a new solver.
type Solver struct {
	formula    *sat.Formula
	assignment *sat.Assignment
	engine     engine.Engine
	rec        *trace.Recorder
	verbose    bool

	// Search statistics.
	Decisions  int64
	Backtracks int64
}

// NewSolver returns a solver for the given formula. The recorder observes
// every search event and may not be nil.
func NewSolver(f *sat.Formula, eng engine.Engine, rec *trace.Recorder, opts Options) *Solver {
	return &Solver{
		formula:    f,
		assignment: sat.NewAssignment(f.NumVars),
		engine:     eng,
		rec:        rec,
		verbose:    opts.Verbose,
	}
}

// Solve runs the search to a terminal outcome, starting with the level 0
// propagation pre-check. The returned error is nil unless the search was
// aborted (gateway failure, invariant violation, or cancellation); no
// partial SAT/UNSAT answer is ever produced in that case.
func (s *Solver) Solve(ctx context.Context) (Outcome, error) {
	if err := s.formula.Validate(); err != nil {
		return Outcome{}, err
	}

	s.rec.LevelStart(0)
	found, err := s.solveFrom(ctx, 0, sat.None)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{
		Status:     Unsatisfiable,
		Decisions:  s.Decisions,
		Backtracks: s.Backtracks,
	}
	if found {
		out.Status = Satisfiable
		out.Model = s.witness()
	}
	s.rec.Finalize(found, out.Model, out.Decisions, out.Backtracks)
	return out, nil
}

// solveFrom runs propagation for the given level and decision, then either
// stops (SAT), reports failure to the caller (conflict), or branches on
// the next heuristic literal. Returning (false, nil) means this level has
// no satisfying extension and the caller must backtrack.
func (s *Solver) solveFrom(ctx context.Context, level int, decision sat.Literal) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	res, err := s.engine.Propagate(ctx, level, decision)
	if err != nil {
		return false, err
	}
	s.rec.BCPResult(level, res.Verdict, res.ConflictID)
	s.rec.EngineLog(res.Log)

	if err := s.fold(level, res.Propagated); err != nil {
		return false, err
	}
	s.rec.VarState(s.assignment.Snapshot())

	switch res.Verdict {
	case engine.Sat:
		s.completeWitness(level, res)
		return true, nil
	case engine.Conflict, engine.Unsat:
		// Chronological backtracking: the caller tries its other
		// branch, or fails upward. A conflict at level 0 means the
		// formula itself is unsatisfiable.
		return false, nil
	}

	if err := ctx.Err(); err != nil {
		return false, err
	}

	lit, err := sat.SelectLiteral(s.formula, s.assignment)
	if err != nil {
		return false, err
	}
	if s.verbose {
		fmt.Printf("c trail: %# v\n", pretty.Formatter(s.assignment.Trail()))
	}

	next := level + 1

	// First branch: the heuristic's literal.
	s.Decisions++
	s.rec.LevelStart(next)
	s.rec.Decide(next, lit)
	if err := s.assignment.Assign(next, lit, sat.Decision); err != nil {
		return false, err
	}
	found, err := s.solveFrom(ctx, next, lit)
	if err != nil || found {
		return found, err
	}

	// Second branch: undo the failed branch, try the opposite literal at
	// the same level.
	opposite := lit.Negate()
	s.Backtracks++
	s.assignment.UndoTo(level)
	s.rec.Backtrack(next, lit, opposite)
	s.rec.Decide(next, opposite)
	if err := s.assignment.Assign(next, opposite, sat.Decision); err != nil {
		return false, err
	}
	found, err = s.solveFrom(ctx, next, opposite)
	if err != nil || found {
		return found, err
	}

	// Both branches failed: this level is a dead end.
	s.assignment.UndoTo(level)
	s.rec.Exhausted(next)
	return false, nil
}

// fold records the engine's propagated literals in the assignment at the
// given level. Literals come from an untrusted engine response, so each is
// range-checked first. A literal that is already true is skipped (the
// engine may echo assignments it already reported); a literal that is
// already false contradicts the engine's own verdict and aborts the
// search.
func (s *Solver) fold(level int, propagated []sat.Literal) error {
	for _, l := range propagated {
		if l == sat.None || l.Var() > s.formula.NumVars {
			return errors.Wrapf(engine.ErrGateway, "propagated literal %d out of range [1, %d]", l, s.formula.NumVars)
		}
		switch s.assignment.LitValue(l) {
		case sat.True:
			continue
		case sat.False:
			return errors.Wrapf(sat.ErrReassignment, "propagated literal %d contradicts the current assignment", l)
		}
		if err := s.assignment.Assign(level, l, sat.Propagated); err != nil {
			return err
		}
	}
	return nil
}

// completeWitness turns the current assignment into a complete one after a
// SAT verdict: variables the engine reports a value for take that value,
// and variables no clause constrains default to true.
func (s *Solver) completeWitness(level int, res *engine.Result) {
	for v := 1; v <= s.formula.NumVars; v++ {
		if s.assignment.Value(v) != sat.Unassigned {
			continue
		}
		lit := sat.Literal(v)
		if res.VarState[v] == sat.False {
			lit = lit.Negate()
		}
		// Assign cannot fail here: the variable is unassigned.
		_ = s.assignment.Assign(level, lit, sat.Propagated)
	}
}

func (s *Solver) witness() []bool {
	model, ok := s.assignment.Model()
	if !ok {
		// completeWitness runs on every SAT verdict, so an incomplete
		// model here is unreachable.
		panic("witness requested on an incomplete assignment")
	}
	return model
}
