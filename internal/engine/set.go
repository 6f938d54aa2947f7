package engine

// resetSet is a set of integers from 0 to N-1 that can be emptied in
// constant time, used to report each satisfied clause at most once per
// propagation round.
type resetSet struct {
	addedAt []uint16
	stamp   uint16
}

func newResetSet(n int) *resetSet {
	return &resetSet{
		addedAt: make([]uint16, n),
		stamp:   1,
	}
}

// Contains returns true if v is in the set.
func (rs *resetSet) Contains(v int) bool {
	return rs.addedAt[v] == rs.stamp
}

// Add adds v to the set.
func (rs *resetSet) Add(v int) {
	rs.addedAt[v] = rs.stamp
}

// Clear removes all the elements in the set in constant time.
func (rs *resetSet) Clear() {
	rs.stamp++
	if rs.stamp == 0 { // overflow
		rs.stamp = 1
		for i := range rs.addedAt {
			rs.addedAt[i] = 0
		}
	}
}
