//go:build !pprof

package profile

// Modes returns the supported profiling modes, which is always empty unless
// built with the pprof build tag.
func Modes() []string { return nil }

func begin(settings) (stopper, error) { return nil, ErrUnavailable }
