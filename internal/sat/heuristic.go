package sat

// SelectLiteral implements the MOM branching heuristic (Maximum
// Occurrences in Minimum-size clauses): among the clauses that are not yet
// satisfied, restrict to those with the fewest unassigned literals, count
// literal occurrences (polarities kept apart) over that subset, and return
// the most frequent literal.
//
// Ties are broken deterministically: lowest variable ID first, then
// positive polarity over negative. The same clause set and assignment
// therefore always produce the same decision, which keeps execution traces
// reproducible.
//
// SelectLiteral must only be called while at least one clause is
// unsatisfied; calling it on a fully satisfied formula is a caller bug and
// fails with ErrNoUnsatisfiedClause. Clauses with every literal false are
// conflicts, which the inference engine reports before the heuristic ever
// runs; they are skipped here.
func SelectLiteral(f *Formula, a *Assignment) (Literal, error) {
	minSize := -1
	for _, c := range f.Clauses {
		satisfied, unassigned := c.Status(a)
		if satisfied || unassigned == 0 {
			continue
		}
		if minSize < 0 || unassigned < minSize {
			minSize = unassigned
		}
	}
	if minSize < 0 {
		return None, ErrNoUnsatisfiedClause
	}

	counts := map[Literal]int{}
	for _, c := range f.Clauses {
		satisfied, unassigned := c.Status(a)
		if satisfied || unassigned != minSize {
			continue
		}
		for _, l := range c {
			if a.LitValue(l) == Unassigned {
				counts[l]++
			}
		}
	}

	best, bestCount := None, 0
	for l, n := range counts {
		if n > bestCount || (n == bestCount && precedes(l, best)) {
			best, bestCount = l, n
		}
	}
	return best, nil
}

// precedes reports whether l wins the deterministic tie-break against
// best: lower variable ID first, positive polarity second.
func precedes(l, best Literal) bool {
	if best == None {
		return true
	}
	if l.Var() != best.Var() {
		return l.Var() < best.Var()
	}
	return l.IsPositive()
}
