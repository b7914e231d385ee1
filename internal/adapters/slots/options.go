package slots

// Default run-loop configuration constants.
const (
	defaultOpsBuffer = 64
)

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithOpsBuffer sets the run-loop channel buffer size.
func WithOpsBuffer(size int) Option {
	return func(s *Store) {
		if size > 0 {
			s.ops = make(chan func(), size)
		}
	}
}
