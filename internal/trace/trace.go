// Package trace accumulates the structured events of one search invocation
// and renders them as the master execution trace. A Recorder is owned by a
// single search; there is no process-wide trace state.
package trace

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cigdemahmet27/logic-and-computabilitiy-p4/internal/engine"
	"github.com/cigdemahmet27/logic-and-computabilitiy-p4/internal/sat"
)

type eventKind uint8

const (
	evLevelStart eventKind = iota
	evDecide
	evBCPResult
	evEngineLog
	evVarState
	evBacktrack
	evExhausted
)

type event struct {
	kind       eventKind
	level      int
	lit        sat.Literal
	opposite   sat.Literal
	verdict    engine.Verdict
	conflictID int
	entries    []engine.LogEntry
	state      []sat.LBool
}

type summary struct {
	satisfiable bool
	model       []bool
	decisions   int64
	backtracks  int64
}

// Recorder is an append-only sink for search events. Events are buffered
// in memory and rendered only when the trace is written, so an aborted
// search never leaves a corrupted trace file behind.
type Recorder struct {
	cnfFile   string
	log       logrus.FieldLogger
	events    []event
	finalized bool
	final     summary
}

// New returns a recorder for one search over the given CNF file.
func New(cnfFile string, log logrus.FieldLogger) *Recorder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Recorder{cnfFile: cnfFile, log: log}
}

// LevelStart records the opening of a decision level.
func (r *Recorder) LevelStart(dl int) {
	r.events = append(r.events, event{kind: evLevelStart, level: dl})
}

// Decide records a decision made by the search procedure.
func (r *Recorder) Decide(dl int, lit sat.Literal) {
	r.events = append(r.events, event{kind: evDecide, level: dl, lit: lit})
}

// BCPResult records the verdict of a propagation round. conflictID is -1
// unless the verdict is a conflict.
func (r *Recorder) BCPResult(dl int, verdict engine.Verdict, conflictID int) {
	r.events = append(r.events, event{kind: evBCPResult, level: dl, verdict: verdict, conflictID: conflictID})
}

// EngineLog records the engine's execution log entries, forwarded
// verbatim.
func (r *Recorder) EngineLog(entries []engine.LogEntry) {
	if len(entries) == 0 {
		return
	}
	r.events = append(r.events, event{kind: evEngineLog, entries: entries})
}

// VarState records a snapshot of the per-variable values, indexed by
// variable ID with slot 0 unused.
func (r *Recorder) VarState(state []sat.LBool) {
	r.events = append(r.events, event{kind: evVarState, state: state})
}

// Backtrack records that the branch on failed at level dl was undone and
// the opposite literal is being tried.
func (r *Recorder) Backtrack(dl int, failed, opposite sat.Literal) {
	r.events = append(r.events, event{kind: evBacktrack, level: dl, lit: failed, opposite: opposite})
}

// Exhausted records that both branches at level dl failed.
func (r *Recorder) Exhausted(dl int) {
	r.events = append(r.events, event{kind: evExhausted, level: dl})
}

// Finalize records the terminal outcome of the search. The model is only
// consulted when satisfiable is true.
func (r *Recorder) Finalize(satisfiable bool, model []bool, decisions, backtracks int64) {
	r.finalized = true
	r.final = summary{
		satisfiable: satisfiable,
		model:       model,
		decisions:   decisions,
		backtracks:  backtracks,
	}
}

// Finalized reports whether a terminal outcome has been recorded.
func (r *Recorder) Finalized() bool {
	return r.finalized
}

// WriteTo renders the trace. A trace without a terminal outcome is
// explicitly marked partial.
func (r *Recorder) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.render())
	return int64(n), err
}

// WriteFile writes the trace to the given path. Failures are reported as
// warnings and returned, but callers are free to ignore them: tracing is
// best-effort and never affects the search result.
func (r *Recorder) WriteFile(path string) error {
	if err := os.WriteFile(path, []byte(r.render()), 0o644); err != nil {
		r.log.Warnf("could not write trace file: %v", err)
		return err
	}
	return nil
}

func (r *Recorder) render() string {
	sb := &strings.Builder{}
	line := strings.Repeat("=", 80)

	fmt.Fprintf(sb, "%s\n", line)
	fmt.Fprintf(sb, "                         MASTER EXECUTION TRACE\n")
	fmt.Fprintf(sb, "                         DPLL SAT Solver\n")
	fmt.Fprintf(sb, "%s\n\n", line)
	fmt.Fprintf(sb, "CNF File: %s\n", r.cnfFile)
	fmt.Fprintf(sb, "%s\n\n", strings.Repeat("-", 40))

	for _, e := range r.events {
		r.renderEvent(sb, e)
	}

	if !r.finalized {
		fmt.Fprintf(sb, "\n*** PARTIAL TRACE: search aborted before a terminal outcome ***\n")
		return sb.String()
	}

	fmt.Fprintf(sb, "\n%s\n", line)
	fmt.Fprintf(sb, "                              FINAL RESULT\n")
	fmt.Fprintf(sb, "%s\n\n", line)
	if r.final.satisfiable {
		fmt.Fprintf(sb, "RESULT: SATISFIABLE\n\n")
		fmt.Fprintf(sb, "SATISFYING ASSIGNMENT:\n")
		for i, b := range r.final.model {
			fmt.Fprintf(sb, "  Variable %d = %s\n", i+1, sat.Lift(b))
		}
	} else {
		fmt.Fprintf(sb, "RESULT: UNSATISFIABLE\n\n")
		fmt.Fprintf(sb, "No satisfying assignment exists.\n")
	}
	fmt.Fprintf(sb, "\nSTATISTICS:\n")
	fmt.Fprintf(sb, "  Decisions made: %d\n", r.final.decisions)
	fmt.Fprintf(sb, "  Backtracks: %d\n", r.final.backtracks)
	fmt.Fprintf(sb, "\n%s\n", line)

	return sb.String()
}

func (r *Recorder) renderEvent(sb *strings.Builder, e event) {
	switch e.kind {
	case evLevelStart:
		sep := strings.Repeat("=", 60)
		fmt.Fprintf(sb, "\n%s\n--- DECISION LEVEL %d ---\n%s\n", sep, e.level, sep)
	case evDecide:
		fmt.Fprintf(sb, "[DL%d] DECIDE      L=%-4d | Var %d = %s\n", e.level, int(e.lit), e.lit.Var(), e.lit.Assigns())
	case evBCPResult:
		switch e.verdict {
		case engine.Sat:
			fmt.Fprintf(sb, "[DL%d] BCP_RESULT        | STATUS: SAT - All clauses satisfied!\n", e.level)
		case engine.Conflict, engine.Unsat:
			fmt.Fprintf(sb, "[DL%d] BCP_RESULT        | STATUS: CONFLICT", e.level)
			if e.conflictID >= 0 {
				fmt.Fprintf(sb, " (Clause: %d)", e.conflictID)
			}
			fmt.Fprintf(sb, "\n")
		default:
			fmt.Fprintf(sb, "[DL%d] BCP_RESULT        | STATUS: CONTINUE\n", e.level)
		}
	case evEngineLog:
		for _, entry := range e.entries {
			fmt.Fprintf(sb, "  %s\n", entry)
		}
	case evVarState:
		fmt.Fprintf(sb, "\n--- CURRENT VARIABLE STATE ---\n")
		for v := 1; v < len(e.state); v++ {
			fmt.Fprintf(sb, "  %-4d | %s\n", v, e.state[v])
		}
	case evBacktrack:
		stars := strings.Repeat("*", 60)
		fmt.Fprintf(sb, "\n%s\n", stars)
		fmt.Fprintf(sb, "*** BACKTRACK at DL %d ***\n", e.level)
		fmt.Fprintf(sb, "    Failed literal: %d\n", int(e.lit))
		fmt.Fprintf(sb, "    Trying opposite: %d\n", int(e.opposite))
		fmt.Fprintf(sb, "%s\n\n", stars)
	case evExhausted:
		fmt.Fprintf(sb, "[DL%d] EXHAUSTED         | Both branches failed, propagating failure upward\n", e.level)
	}
}
