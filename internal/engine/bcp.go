package engine

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rhartert/yagh"

	"github.com/cigdemahmet27/logic-and-computabilitiy-p4/internal/sat"
)

// BCPEngine is the in-process reference inference engine: exact unit
// propagation and conflict detection over the formula. It keeps its own
// view of the assignment, keyed by decision level, and mirrors the
// search's chronological backtracking from the level of each request.
//
// The engine is deterministic: clauses are scanned in formula order and
// pending unit assignments are applied in ascending variable order, so
// the same search always produces the same execution log.
type BCPEngine struct {
	formula *sat.Formula

	// Engine-side assignment view.
	values []sat.LBool
	levels []int
	trail  []int // assigned variables, in assignment order

	// Pending unit assignments, popped in ascending variable order.
	pending    *yagh.IntMap[int]
	pendingVal []sat.LBool

	// Clauses already reported satisfied in the current round.
	satisfied *resetSet
}

var _ Engine = (*BCPEngine)(nil)

// NewBCPEngine returns a reference engine for the given formula.
func NewBCPEngine(f *sat.Formula) *BCPEngine {
	levels := make([]int, f.NumVars+1)
	for i := range levels {
		levels[i] = -1
	}
	return &BCPEngine{
		formula:    f,
		values:     make([]sat.LBool, f.NumVars+1),
		levels:     levels,
		pending:    yagh.New[int](f.NumVars + 1),
		pendingVal: make([]sat.LBool, f.NumVars+1),
		satisfied:  newResetSet(len(f.Clauses)),
	}
}

// Propagate implements Engine. A request for level L first discards every
// assignment the engine made at levels >= L, which is how the search's
// backtracking (including trying the opposite branch at the same level)
// reaches the engine.
func (e *BCPEngine) Propagate(ctx context.Context, level int, decision sat.Literal) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.undoTo(level - 1)
	e.drainPending()
	e.satisfied.Clear()

	res := &Result{Verdict: Continue, Level: level, ConflictID: -1}

	if decision != sat.None {
		if decision.Var() > e.formula.NumVars {
			return nil, errors.Wrapf(ErrGateway, "trigger literal %d out of range", decision)
		}
		res.Log = append(res.Log, LogEntry{Level: level, Event: EventDecide, Lit: decision})
		if e.values[decision.Var()] != sat.Unassigned {
			return nil, errors.Wrapf(ErrGateway, "trigger literal %d: variable already assigned", decision)
		}
		e.assign(level, decision)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		allSatisfied := true
		for i, c := range e.formula.Clauses {
			hasTrue, unassigned, unit := e.clauseStatus(c)
			if hasTrue {
				if !e.satisfied.Contains(i) {
					e.satisfied.Add(i)
					res.Log = append(res.Log, LogEntry{Level: level, Event: EventSatisfied, Detail: c.String()})
				}
				continue
			}
			allSatisfied = false

			if unassigned == 0 {
				res.Log = append(res.Log, LogEntry{Level: level, Event: EventConflict, Detail: c.String()})
				res.Verdict = Conflict
				res.ConflictID = i
				res.VarState = e.varState()
				e.drainPending()
				return res, nil
			}
			if unassigned == 1 {
				v := unit.Var()
				if e.pending.Contains(v) {
					if e.pendingVal[v] != unit.Assigns() {
						// Two unit clauses force opposite values.
						res.Log = append(res.Log, LogEntry{Level: level, Event: EventConflict, Detail: c.String()})
						res.Verdict = Conflict
						res.ConflictID = i
						res.VarState = e.varState()
						e.drainPending()
						return res, nil
					}
					continue
				}
				e.pending.Put(v, v)
				e.pendingVal[v] = unit.Assigns()
				res.Log = append(res.Log, LogEntry{Level: level, Event: EventUnit, Lit: unit, Detail: c.String()})
			}
		}

		if allSatisfied {
			res.Verdict = Sat
			break
		}

		assignedAny := false
		for {
			next, ok := e.pending.Pop()
			if !ok {
				break
			}
			lit := sat.Literal(next.Elem)
			if e.pendingVal[next.Elem] == sat.False {
				lit = lit.Negate()
			}
			e.assign(level, lit)
			res.Log = append(res.Log, LogEntry{Level: level, Event: EventAssign, Lit: lit})
			res.Propagated = append(res.Propagated, lit)
			assignedAny = true
		}
		if !assignedAny {
			res.Verdict = Continue
			break
		}
	}

	res.VarState = e.varState()
	return res, nil
}

func (e *BCPEngine) assign(level int, lit sat.Literal) {
	v := lit.Var()
	e.values[v] = lit.Assigns()
	e.levels[v] = level
	e.trail = append(e.trail, v)
}

func (e *BCPEngine) undoTo(level int) {
	i := len(e.trail)
	for i > 0 && e.levels[e.trail[i-1]] > level {
		v := e.trail[i-1]
		e.values[v] = sat.Unassigned
		e.levels[v] = -1
		i--
	}
	e.trail = e.trail[:i]
}

func (e *BCPEngine) drainPending() {
	for {
		if _, ok := e.pending.Pop(); !ok {
			return
		}
	}
}

// clauseStatus scans the clause under the engine's view. When exactly one
// literal is unassigned, unit is that literal.
func (e *BCPEngine) clauseStatus(c sat.Clause) (hasTrue bool, unassigned int, unit sat.Literal) {
	for _, l := range c {
		switch v := e.values[l.Var()]; {
		case v == sat.Unassigned:
			unassigned++
			unit = l
		case (v == sat.True) == l.IsPositive():
			return true, 0, sat.None
		}
	}
	if unassigned != 1 {
		unit = sat.None
	}
	return false, unassigned, unit
}

func (e *BCPEngine) varState() map[int]sat.LBool {
	state := make(map[int]sat.LBool, e.formula.NumVars)
	for v := 1; v <= e.formula.NumVars; v++ {
		state[v] = e.values[v]
	}
	return state
}
