//go:build pprof

package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/recline/log"
	"github.com/ardnew/recline/pkg"
	"github.com/ardnew/recline/profile"
)

type pprofConfig struct {
	Mode string `default:""            enum:",${pprofModeEnum}" help:"Enable profiling"         placeholder:"${enum}" short:"p"`
	Dir  string `default:"${pprofDir}"                          help:"Profile output directory"                                 type:"path"`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModeEnum": strings.Join(profile.Modes(), ","),
		"pprofDir":      filepath.Join(pkg.CacheDir(), profile.Tag),
	}
}

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: "pprof", Title: "Profiling (pprof)"}
}

// start starts profiling if a mode was selected. The returned function stops
// it.
func (f pprofConfig) start(ctx context.Context) (stop func(), err error) {
	s, err := profile.Start(ctx,
		profile.WithMode(f.Mode),
		profile.WithDir(f.Dir),
		profile.WithQuiet(true),
		profile.WithLogger(log.Default()),
	)
	if err != nil {
		return nil, err
	}

	return s.Stop, nil
}
