// Package pattern defines the semantic data types for qarun's result visualizations.
// Patterns are pure data; renderers decide presentation.
package pattern

// PatternType identifies the kind of visualization pattern.
type PatternType string

const (
	PatternTypeSummary    PatternType = "summary"
	PatternTypeDoughnut   PatternType = "doughnut"
	PatternTypeStackedBar PatternType = "stacked-bar"
	PatternTypeResultList PatternType = "result-list"
	PatternTypeTesterList PatternType = "tester-list"
)

// Pattern is the interface all visualization patterns implement.
// Patterns hold data; renderers decide how to present it.
type Pattern interface {
	Type() PatternType
}

// Status kinds shared by every pattern. They select icon and color.
const (
	KindPass    = "pass"
	KindFail    = "fail"
	KindBlocked = "blocked"
	KindInfo    = "info"
)
