package log

import (
	"log/slog"
	"time"
)

// handler returns the [slog.Handler] described by o.
func (o options) handler() slog.Handler {
	ho := &slog.HandlerOptions{
		AddSource:   o.caller,
		Level:       slog.Level(o.level),
		ReplaceAttr: o.replaceAttr,
	}

	switch {
	case o.format == FormatJSON && o.pretty:
		return newPrettyJSONHandler(o.output, ho)
	case o.format == FormatJSON:
		return slog.NewJSONHandler(o.output, ho)
	case o.format == FormatText && o.pretty:
		return newPrettyTextHandler(o.output, ho)
	case o.format == FormatText:
		return slog.NewTextHandler(o.output, ho)
	default:
		return slog.DiscardHandler
	}
}

// replaceAttr renders the built-in time and level attributes.
func (o options) replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}

	switch a.Key {
	case slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			s := o.formatTime(t)
			if s == "" {
				return slog.Attr{}
			}

			a.Value = slog.StringValue(s)
		}

	case slog.LevelKey:
		if l, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(Level(l).label())
		}
	}

	return a
}
