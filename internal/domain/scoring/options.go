package scoring

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithTable replaces the default rule table.
func WithTable(t *Table) Option {
	return func(s *Scorer) {
		if t != nil {
			s.table = t
		}
	}
}

// WithMinimums sets the position and action sample minimums.
func WithMinimums(positions, actions int) Option {
	return func(s *Scorer) {
		if positions >= 0 {
			s.minPositions = positions
		}
		if actions >= 0 {
			s.minActions = actions
		}
	}
}

// WithConfidenceRule selects how the minimums combine.
func WithConfidenceRule(rule ConfidenceRule) Option {
	return func(s *Scorer) {
		s.confidenceRule = rule
	}
}
