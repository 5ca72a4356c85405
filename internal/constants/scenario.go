package constants

// Scenario defaults
const (
	DefaultBlueprintPrefix = "TestCompRefBP_"
	DefaultSuffixLength    = 3
	DefaultRunListLimit    = 50
	MaxRunListLimit        = 1000
)
