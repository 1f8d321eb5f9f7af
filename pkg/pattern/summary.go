package pattern

// Summary represents the headline counters shown as cards.
type Summary struct {
	Label   string
	Metrics []SummaryItem
}

// SummaryItem is a single card in a summary.
type SummaryItem struct {
	Label string // e.g., "Total Tests", "Passed"
	Value int
	Kind  string // KindPass, KindFail, KindBlocked, KindInfo; selects the color
}

func (s *Summary) Type() PatternType { return PatternTypeSummary }
