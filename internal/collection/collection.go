package collection

// Collection is a source or target record set. The planner only ever reads
// its cardinality.
type Collection interface {
	Size() int
}

// Fixed is a collection known only by its cardinality
type Fixed int

func (f Fixed) Size() int { return int(f) }
