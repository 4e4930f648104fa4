package cli

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/recline/log"
)

// logFormat configures the logger format as a side effect of parsing via
// encoding.TextUnmarshaler, so that errors reported while parsing the rest of
// the command line already use it.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel configures the logger level as a side effect of parsing via
// encoding.TextUnmarshaler.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"warn"    enum:"${logLevelEnum}"  help:"Set log level."`
	Format     logFormat `default:"text"    enum:"${logFormatEnum}" help:"Set log format."`
	TimeLayout string    `default:"RFC3339"                         help:"Set timestamp format."`
	Caller     bool      `default:"false"                           help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                            help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelEnum":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormatEnum": strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

// start applies every parsed logger flag, including those without a
// TextUnmarshaler.
func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

// scan applies logger flags found in args before kong parses them, so the
// logger is configured regardless of flag position. Boolean flags have no
// TextUnmarshaler and are only honored here and in start.
func (f *logConfig) scan(args []string) {
	for i := 0; i < len(args); i++ {
		name, value, assigned := strings.Cut(args[i], "=")

		// next consumes the following argument as the value of a
		// non-boolean flag given without '='.
		next := func() string {
			if !assigned && i+1 < len(args) && args[i+1] != "" && args[i+1][0] != '-' {
				i++

				return args[i]
			}

			return value
		}

		switch name {
		case "--log-level":
			_ = f.Level.UnmarshalText([]byte(next()))

		case "--log-format":
			_ = f.Format.UnmarshalText([]byte(next()))

		case "--log-pretty", "--no-log-pretty":
			if v, ok := boolFlag(name, value, assigned); ok {
				f.Pretty = v
				log.Config(log.WithPretty(v))
			}

		case "--log-caller", "--no-log-caller":
			if v, ok := boolFlag(name, value, assigned); ok {
				f.Caller = v
				log.Config(log.WithCaller(v))
			}
		}
	}
}

// boolFlag returns the value of a negatable boolean flag.
func boolFlag(name, value string, assigned bool) (v, ok bool) {
	v = true

	if assigned {
		var err error
		if v, err = strconv.ParseBool(value); err != nil {
			return false, false
		}
	}

	if strings.HasPrefix(name, "--no-") {
		v = !v
	}

	return v, true
}
