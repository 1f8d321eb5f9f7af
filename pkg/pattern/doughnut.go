package pattern

// Doughnut represents the share of each status in the whole result set.
type Doughnut struct {
	Label  string
	Slices []Slice
}

// Slice is one status share.
type Slice struct {
	Label string
	Count int
	Kind  string
}

// Total returns the sum of all slices.
func (d *Doughnut) Total() int {
	n := 0
	for _, s := range d.Slices {
		n += s.Count
	}
	return n
}

func (d *Doughnut) Type() PatternType { return PatternTypeDoughnut }
