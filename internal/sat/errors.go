package sat

import "github.com/pkg/errors"

// ErrMalformedFormula reports an invalid formula (out-of-range literal,
// clause count mismatch). It is always raised before search starts.
var ErrMalformedFormula = errors.New("malformed formula")

// ErrReassignment reports an attempt to assign a variable that is already
// assigned at an active level. This is an invariant violation in the
// caller, not a property of the formula.
var ErrReassignment = errors.New("variable already assigned at an active level")

// ErrNoUnsatisfiedClause reports that the branching heuristic was called
// while every clause is already satisfied, which correct callers never do.
var ErrNoUnsatisfiedClause = errors.New("no unsatisfied clause to branch on")
