package pattern

// ResultList represents the detail list, one group per test id.
type ResultList struct {
	Label  string
	Tab    string // "all", "pass", "fail", "blocked"
	Groups []ResultGroup
}

// ResultGroup is every tester's verdict on one test id.
type ResultGroup struct {
	ID       string
	Title    string // id, or "Response N" for entries without one
	Kind     string // summary status kind
	Feature  string
	Scenario string
	Steps    []string
	Expected string
	Results  []ResultItem
}

// ResultItem is one tester's verdict.
type ResultItem struct {
	Tester  string
	Date    string
	Status  string // display text, e.g. "Pass"
	Kind    string
	Comment string
}

func (r *ResultList) Type() PatternType { return PatternTypeResultList }
