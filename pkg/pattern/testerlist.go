package pattern

// TesterList represents who contributed the loaded reports.
type TesterList struct {
	Label   string
	Testers []TesterItem
}

// TesterItem is one tester line.
type TesterItem struct {
	Name   string
	Date   string
	Extras []string // browser, device, section when known
}

func (t *TesterList) Type() PatternType { return PatternTypeTesterList }
