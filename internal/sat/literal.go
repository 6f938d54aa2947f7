package sat

import "strconv"

// Literal represents a literal in DIMACS convention: a strictly positive
// value refers to a variable, a strictly negative value to its negation.
// Zero is not a valid literal; it is used as the "no literal" marker on the
// engine boundary.
type Literal int

// None is the absence of a literal (e.g. the level 0 propagation call has
// no trigger literal).
const None Literal = 0

// Var returns the ID of the literal's variable.
func (l Literal) Var() int {
	if l < 0 {
		return int(-l)
	}
	return int(l)
}

// IsPositive returns true if and only if the literal represents the value
// of its variable (i.e. not its negation).
func (l Literal) IsPositive() bool {
	return l > 0
}

// Negate returns the opposite literal.
func (l Literal) Negate() Literal {
	return -l
}

// Assigns returns the variable value implied by making the literal true.
func (l Literal) Assigns() LBool {
	return Lift(l > 0)
}

func (l Literal) String() string {
	return strconv.Itoa(int(l))
}
