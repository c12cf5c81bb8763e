package window

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithWindow sets the position and speed horizon in seconds.
func WithWindow(seconds float64) Option {
	return func(s *Store) {
		if seconds > 0 {
			s.window = seconds
		}
	}
}

// WithActionRetention sets the action horizon in seconds. Values below the
// position horizon are raised to it.
func WithActionRetention(seconds float64) Option {
	return func(s *Store) {
		if seconds > 0 {
			s.actionRetention = seconds
		}
	}
}
