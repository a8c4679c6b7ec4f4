package form

// Navigator tracks the active section of a wizard. Its index always
// satisfies 0 <= index < count. Moves never check whether earlier sections
// are complete; validation happens only at submit.
type Navigator struct {
	index int
	count int
}

// NewNavigator creates a navigator over count sections, starting at 0.
// A count below 1 is treated as a single section.
func NewNavigator(count int) *Navigator {
	if count < 1 {
		count = 1
	}
	return &Navigator{count: count}
}

// Index returns the active section.
func (n *Navigator) Index() int { return n.index }

// Count returns the number of sections.
func (n *Navigator) Count() int { return n.count }

// IsFirst reports whether the first section is active.
func (n *Navigator) IsFirst() bool { return n.index == 0 }

// IsLast reports whether the last section is active.
func (n *Navigator) IsLast() bool { return n.index == n.count-1 }

// Next moves forward one section. It is a no-op on the last section.
func (n *Navigator) Next() bool {
	if n.index >= n.count-1 {
		return false
	}
	n.index++
	return true
}

// Previous moves back one section. It is a no-op on the first section.
func (n *Navigator) Previous() bool {
	if n.index <= 0 {
		return false
	}
	n.index--
	return true
}

// Jump activates section i. Invalid indexes are ignored.
func (n *Navigator) Jump(i int) bool {
	if i < 0 || i >= n.count {
		return false
	}
	n.index = i
	return true
}
