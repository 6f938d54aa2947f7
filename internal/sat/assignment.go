package sat

import "github.com/pkg/errors"

// EntryKind distinguishes the two ways a variable gets assigned during
// search.
type EntryKind uint8

const (
	// Decision marks the literal chosen by the branching heuristic that
	// opens a decision level.
	Decision EntryKind = iota
	// Propagated marks a literal forced by the inference engine.
	Propagated
)

func (k EntryKind) String() string {
	if k == Decision {
		return "DECISION"
	}
	return "PROPAGATED"
}

// TrailEntry records one assignment so that it can be undone when the
// search backtracks past its level.
type TrailEntry struct {
	Level int
	Lit   Literal
	Kind  EntryKind
}

// Assignment is a total function from variables to lifted booleans,
// partitioned into decision levels. Level 0 holds forced (pre-search)
// assignments; each level above it starts with exactly one decision
// literal followed by the literals the engine propagated at that level.
type Assignment struct {
	values []LBool // indexed by variable ID, slot 0 unused
	levels []int   // level at which each variable was assigned, -1 if none
	trail  []TrailEntry
}

// NewAssignment returns an empty assignment over variables 1..numVars.
func NewAssignment(numVars int) *Assignment {
	levels := make([]int, numVars+1)
	for i := range levels {
		levels[i] = -1
	}
	return &Assignment{
		values: make([]LBool, numVars+1),
		levels: levels,
	}
}

// NumVars returns the number of variables covered by the assignment.
func (a *Assignment) NumVars() int {
	return len(a.values) - 1
}

// Value returns the current value of the given variable.
func (a *Assignment) Value(v int) LBool {
	return a.values[v]
}

// LitValue returns the value of the literal under the current assignment.
func (a *Assignment) LitValue(l Literal) LBool {
	v := a.values[l.Var()]
	if l.IsPositive() {
		return v
	}
	return v.Opposite()
}

// Assign sets the literal's variable to the value that makes the literal
// true and pushes a trail entry at the given level. Assigning a variable
// that is already assigned is an invariant violation and fails with
// ErrReassignment, whatever the polarity.
func (a *Assignment) Assign(level int, lit Literal, kind EntryKind) error {
	v := lit.Var()
	if a.values[v] != Unassigned {
		return errors.Wrapf(ErrReassignment, "variable %d (level %d, wanted %s at level %d)", v, a.levels[v], lit.Assigns(), level)
	}
	a.values[v] = lit.Assigns()
	a.levels[v] = level
	a.trail = append(a.trail, TrailEntry{Level: level, Lit: lit, Kind: kind})
	return nil
}

// UndoTo pops every trail entry with a level strictly greater than the
// given level and resets the corresponding variables to Unassigned. It is
// a no-op if the trail is already at or below the level.
func (a *Assignment) UndoTo(level int) {
	i := len(a.trail)
	for i > 0 && a.trail[i-1].Level > level {
		e := a.trail[i-1]
		v := e.Lit.Var()
		a.values[v] = Unassigned
		a.levels[v] = -1
		i--
	}
	a.trail = a.trail[:i]
}

// Level returns the level at which the variable was assigned, or -1.
func (a *Assignment) Level(v int) int {
	return a.levels[v]
}

// IsComplete returns true if no variable is unassigned.
func (a *Assignment) IsComplete() bool {
	for v := 1; v < len(a.values); v++ {
		if a.values[v] == Unassigned {
			return false
		}
	}
	return true
}

// Trail returns the current trail. The slice is owned by the assignment
// and must not be mutated.
func (a *Assignment) Trail() []TrailEntry {
	return a.trail
}

// Snapshot returns a copy of the per-variable values, indexed by variable
// ID with slot 0 unused.
func (a *Assignment) Snapshot() []LBool {
	s := make([]LBool, len(a.values))
	copy(s, a.values)
	return s
}

// Model returns the assignment as a plain boolean slice indexed by
// variable-1. It returns false if any variable is still unassigned.
func (a *Assignment) Model() ([]bool, bool) {
	model := make([]bool, a.NumVars())
	for v := 1; v < len(a.values); v++ {
		switch a.values[v] {
		case Unassigned:
			return nil, false
		case True:
			model[v-1] = true
		}
	}
	return model, true
}
