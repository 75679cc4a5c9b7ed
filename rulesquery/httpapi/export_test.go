package httpapi

import "time"

// WithClock replaces the clock that dates cache entries.
func WithClock(now func() time.Time) Option {
	return func(s *Server) error {
		s.now = now
		return nil
	}
}
