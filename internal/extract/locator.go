package extract

// CallLocator finds the ordered sequence of plugin registration call texts
// in a registration file. Two interchangeable implementations exist: a
// tree-sitter strategy that queries the parsed syntax tree, and a textual
// fallback that carves the registration function body by indentation and
// delimiter matching. Both return the same calls for the same input.
type CallLocator interface {
	// Locate returns each registration call's full source text, in file
	// order. Zero matches is a NotFound error, whether the registration
	// section is absent or present but empty.
	Locate(source []byte) ([]string, error)
}

// Strategy selects a call locator implementation.
type Strategy string

const (
	StrategyTree Strategy = "tree"
	StrategyText Strategy = "text"
)

// NewLocator returns the locator for the given strategy, defaulting to the
// tree strategy for anything unrecognized.
func NewLocator(strategy Strategy) CallLocator {
	if strategy == StrategyText {
		return newTextLocator()
	}
	return newTreeLocator()
}

func errNoRegistrations() *Error {
	return notFoundf("no plugin registrations found")
}
