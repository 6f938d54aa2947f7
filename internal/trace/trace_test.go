package trace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cigdemahmet27/logic-and-computabilitiy-p4/internal/engine"
	"github.com/cigdemahmet27/logic-and-computabilitiy-p4/internal/sat"
)

// assertOrder checks that every substring occurs in the rendered trace, in
// the given order.
func assertOrder(t *testing.T, rendered string, subs ...string) {
	t.Helper()
	pos := 0
	for _, sub := range subs {
		i := strings.Index(rendered[pos:], sub)
		if i < 0 {
			t.Fatalf("trace is missing %q after position %d:\n%s", sub, pos, rendered)
		}
		pos += i + len(sub)
	}
}

func recordedTrace() *Recorder {
	r := New("test.cnf", nil)
	r.LevelStart(0)
	r.BCPResult(0, engine.Continue, -1)
	r.VarState([]sat.LBool{sat.Unassigned, sat.Unassigned, sat.Unassigned})
	r.LevelStart(1)
	r.Decide(1, 1)
	r.BCPResult(1, engine.Conflict, 2)
	r.EngineLog([]engine.LogEntry{
		{Level: 1, Event: engine.EventDecide, Lit: 1},
		{Level: 1, Event: engine.EventUnit, Lit: -2, Detail: "(-1 -2)"},
		{Level: 1, Event: engine.EventConflict, Detail: "(2 -1)"},
	})
	r.Backtrack(1, 1, -1)
	r.Decide(1, -1)
	r.BCPResult(1, engine.Sat, -1)
	r.VarState([]sat.LBool{sat.Unassigned, sat.False, sat.True})
	return r
}

func TestRecorder_RenderOrder(t *testing.T) {
	r := recordedTrace()
	r.Finalize(true, []bool{false, true}, 1, 1)

	sb := &strings.Builder{}
	if _, err := r.WriteTo(sb); err != nil {
		t.Fatalf("WriteTo(): want no error, got %s", err)
	}

	assertOrder(t, sb.String(),
		"MASTER EXECUTION TRACE",
		"CNF File: test.cnf",
		"--- DECISION LEVEL 0 ---",
		"[DL0] BCP_RESULT        | STATUS: CONTINUE",
		"--- CURRENT VARIABLE STATE ---",
		"--- DECISION LEVEL 1 ---",
		"[DL1] DECIDE      L=1    | Var 1 = TRUE",
		"[DL1] BCP_RESULT        | STATUS: CONFLICT (Clause: 2)",
		"[DL1] UNIT       L=-2   | (-1 -2)",
		"*** BACKTRACK at DL 1 ***",
		"Failed literal: 1",
		"Trying opposite: -1",
		"[DL1] DECIDE      L=-1   | Var 1 = FALSE",
		"[DL1] BCP_RESULT        | STATUS: SAT - All clauses satisfied!",
		"FINAL RESULT",
		"RESULT: SATISFIABLE",
		"Variable 1 = FALSE",
		"Variable 2 = TRUE",
		"Decisions made: 1",
		"Backtracks: 1",
	)
}

func TestRecorder_UnsatSummary(t *testing.T) {
	r := New("test.cnf", nil)
	r.LevelStart(0)
	r.BCPResult(0, engine.Conflict, 0)
	r.Finalize(false, nil, 0, 0)

	sb := &strings.Builder{}
	if _, err := r.WriteTo(sb); err != nil {
		t.Fatalf("WriteTo(): want no error, got %s", err)
	}

	assertOrder(t, sb.String(),
		"RESULT: UNSATISFIABLE",
		"No satisfying assignment exists.",
		"Decisions made: 0",
		"Backtracks: 0",
	)
	if strings.Contains(sb.String(), "PARTIAL TRACE") {
		t.Errorf("finalized trace must not be marked partial")
	}
}

func TestRecorder_PartialTraceIsMarked(t *testing.T) {
	r := recordedTrace() // not finalized

	sb := &strings.Builder{}
	if _, err := r.WriteTo(sb); err != nil {
		t.Fatalf("WriteTo(): want no error, got %s", err)
	}

	if !strings.Contains(sb.String(), "PARTIAL TRACE") {
		t.Errorf("unfinalized trace must be marked partial")
	}
	if strings.Contains(sb.String(), "FINAL RESULT") {
		t.Errorf("unfinalized trace must not contain a final result block")
	}
	if r.Finalized() {
		t.Errorf("Finalized(): want false")
	}
}

func TestRecorder_WriteFile(t *testing.T) {
	r := recordedTrace()
	r.Finalize(false, nil, 1, 1)

	path := filepath.Join(t.TempDir(), "master_trace.txt")
	if err := r.WriteFile(path); err != nil {
		t.Fatalf("WriteFile(): want no error, got %s", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(): want no error, got %s", err)
	}
	if !strings.Contains(string(content), "RESULT: UNSATISFIABLE") {
		t.Errorf("trace file is missing the final result")
	}
}

func TestRecorder_WriteFileFailureIsNonFatal(t *testing.T) {
	r := recordedTrace()
	r.Finalize(false, nil, 0, 0)

	if err := r.WriteFile(filepath.Join(t.TempDir(), "no", "such", "dir", "t.txt")); err == nil {
		t.Errorf("WriteFile(): want error for unwritable path")
	}
	// The recorder stays usable: the failure only produced a warning.
	if !r.Finalized() {
		t.Errorf("Finalized(): want true")
	}
}
