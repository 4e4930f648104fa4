//go:build pprof

package profile

import (
	"maps"
	"slices"

	"github.com/pkg/profile"

	_ "net/http/pprof" // register HTTP handlers
)

// modes maps each mode name to the pkg/profile option that selects it.
var modes = map[string]func(*profile.Profile){
	"allocs":    profile.MemProfileAllocs,
	"block":     profile.BlockProfile,
	"clock":     profile.ClockProfile,
	"cpu":       profile.CPUProfile,
	"goroutine": profile.GoroutineProfile,
	"heap":      profile.MemProfileHeap,
	"mem":       profile.MemProfile,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// Modes returns the sorted names of the supported profiling modes.
func Modes() []string { return slices.Sorted(maps.Keys(modes)) }

func begin(s settings) (stopper, error) {
	mode, ok := modes[s.mode]
	if !ok {
		return nil, unknownMode(s.mode)
	}

	opts := []func(*profile.Profile){mode}

	if s.dir != "" {
		opts = append(opts, profile.ProfilePath(s.dir))
	}

	if s.quiet {
		opts = append(opts, profile.Quiet)
	}

	return profile.Start(opts...), nil
}
