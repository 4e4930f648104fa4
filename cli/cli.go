package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/recline/cli/cmd"
	"github.com/ardnew/recline/pkg"
)

// baseConfig is the base name of the configuration files.
const baseConfig = "config"

// CLI is the top-level command-line interface for recline.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`
	Line  lineConfig  `embed:"" group:"line"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Cat    cmd.Cat    `cmd:"" default:"withargs" help:"Print the preprocessed lines of each source."`
	Props  cmd.Props  `cmd:""                    help:"Print the properties defined by each source."`
	Browse cmd.Browse `cmd:""                    help:"Interactively filter the preprocessed lines."`
	Init   cmd.Init   `cmd:""                    help:"Initialize configuration file."`
}

// Run executes the recline CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := pkg.MkdirAll(); err != nil {
		return err
	}

	configFilePath := pkg.ConfigPath(baseConfig)

	vars := kong.Vars{
		"version":            pkg.Banner(),
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars()).
		CloneWith(cli.Line.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags so the logger is configured before parsing,
	// regardless of flag position.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group(), cli.Line.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(ctx, configFilePath), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Apply the remaining logger flags before anything else logs.
	cli.Log.start(ctx)

	opts, err := cli.Line.options()
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithLineOptions(ctx, opts...)

	// [pprofConfig.start] is a no-op unless built with tag pprof and enabled.
	stop, err := cli.Pprof.start(ctx)
	if err != nil {
		return err
	}
	defer stop()

	return ktx.Run()
}
