// Package engine is the boundary to the inference engine that performs
// boolean constraint propagation (BCP). The search procedure only consumes
// the engine's verdicts; the propagation algorithm itself lives behind the
// Engine interface and is swappable: an external process speaking the wire
// protocol, the in-process reference engine, or a scripted replay.
package engine

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/cigdemahmet27/logic-and-computabilitiy-p4/internal/sat"
)

// ErrGateway reports a transport or format failure on the engine boundary.
// It is fatal to the current search: without a verdict there is no
// best-effort answer to fall back to.
var ErrGateway = errors.New("inference engine gateway failure")

// Verdict is the outcome of one propagation round.
type Verdict int8

const (
	Continue Verdict = iota
	Sat
	Unsat
	Conflict
)

func (v Verdict) String() string {
	switch v {
	case Sat:
		return "SAT"
	case Unsat:
		return "UNSAT"
	case Conflict:
		return "CONFLICT"
	default:
		return "CONTINUE"
	}
}

// ParseVerdict parses the STATUS value of an engine response.
func ParseVerdict(s string) (Verdict, error) {
	switch s {
	case "SAT":
		return Sat, nil
	case "UNSAT":
		return Unsat, nil
	case "CONFLICT":
		return Conflict, nil
	case "CONTINUE":
		return Continue, nil
	default:
		return Continue, errors.Wrapf(ErrGateway, "unknown status %q", s)
	}
}

// Events reported in the engine's execution log.
const (
	EventDecide    = "DECIDE"
	EventUnit      = "UNIT"
	EventAssign    = "ASSIGN"
	EventSatisfied = "SATISFIED"
	EventConflict  = "CONFLICT"
)

// LogEntry is one step of the engine's internal execution, forwarded
// verbatim to the trace recorder.
type LogEntry struct {
	Level  int
	Event  string
	Lit    sat.Literal // sat.None for events without a literal
	Detail string      // usually the clause involved
}

func (e LogEntry) String() string {
	s := fmt.Sprintf("[DL%d] %-10s", e.Level, e.Event)
	if e.Lit != sat.None {
		s += fmt.Sprintf(" L=%-4d", int(e.Lit))
	} else {
		s += "       "
	}
	s += " |"
	if e.Detail != "" {
		s += " " + e.Detail
	}
	return s
}

// Result is the fully parsed outcome of one propagation call.
type Result struct {
	Verdict    Verdict
	Level      int
	ConflictID int // index of the conflicting clause, -1 if none

	// Propagated lists the literals the engine derived by unit
	// propagation at this level, in the order it assigned them.
	Propagated []sat.Literal

	// Log is the engine's step-by-step execution log.
	Log []LogEntry

	// VarState is the engine's per-variable view after propagation.
	VarState map[int]sat.LBool
}

// Engine performs one blocking propagation round for the given decision
// level. A decision of sat.None is the level 0 pre-check that runs before
// any decision has been made.
type Engine interface {
	Propagate(ctx context.Context, level int, decision sat.Literal) (*Result, error)
}
