package pattern

// StackedBar represents pass/fail/blocked counts per category.
type StackedBar struct {
	Label string
	Bars  []Bar
}

// Bar is one category.
type Bar struct {
	Label   string
	Passed  int
	Failed  int
	Blocked int
}

// Total returns the height of the bar.
func (b Bar) Total() int { return b.Passed + b.Failed + b.Blocked }

// Max returns the tallest bar, used to scale the others.
func (s *StackedBar) Max() int {
	m := 0
	for _, b := range s.Bars {
		if t := b.Total(); t > m {
			m = t
		}
	}
	return m
}

func (s *StackedBar) Type() PatternType { return PatternTypeStackedBar }
