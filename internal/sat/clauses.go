package sat

import (
	"strings"

	"github.com/pkg/errors"
)

// Clause is an immutable disjunction of literals. Whether a clause is
// satisfied is always derived from an assignment, never stored.
type Clause []Literal

// Formula is a CNF formula: a conjunction of clauses over variables
// 1..NumVars. Clause order is preserved for reporting (conflict IDs refer
// to positions in Clauses) but is irrelevant to satisfiability.
type Formula struct {
	NumVars int
	Clauses []Clause
}

// Validate checks that every literal refers to a variable in [1, NumVars].
// Range errors are caught at load time by the DIMACS reader; this is the
// core's defensive re-check before search starts.
func (f *Formula) Validate() error {
	if f.NumVars < 0 {
		return errors.Wrapf(ErrMalformedFormula, "negative variable count %d", f.NumVars)
	}
	for i, c := range f.Clauses {
		for _, l := range c {
			if l == None || l.Var() > f.NumVars {
				return errors.Wrapf(ErrMalformedFormula, "clause %d: literal %d out of range [1, %d]", i, l, f.NumVars)
			}
		}
	}
	return nil
}

// Status reports the state of the clause under the given assignment:
// whether some literal is true, and how many literals are still unassigned.
func (c Clause) Status(a *Assignment) (satisfied bool, unassigned int) {
	for _, l := range c {
		switch a.LitValue(l) {
		case True:
			return true, 0
		case Unassigned:
			unassigned++
		}
	}
	return false, unassigned
}

// IsSatisfied returns true if at least one literal of the clause is true
// under the given assignment.
func (c Clause) IsSatisfied(a *Assignment) bool {
	ok, _ := c.Status(a)
	return ok
}

func (c Clause) String() string {
	sb := strings.Builder{}
	sb.WriteByte('(')
	for i, l := range c {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(l.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
