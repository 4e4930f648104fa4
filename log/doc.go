// Package log provides structured logging over [log/slog] for recline and its
// preprocessing engine.
//
// A [Logger] is an immutable value configured with functional options when
// it is made or wrapped:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
//	logger.Info("source loaded", slog.String("source", "app.conf"))
//
// Attributes are always [slog.Attr] values. [Logger.With] returns a Logger
// that adds attributes to every record, and [Err] builds the conventional
// "error" attribute; errors implementing [slog.LogValuer] are expanded.
//
// The zero Logger discards every record, which lets library code such as
// the line engine accept an optional Logger without checks.
//
// # Levels
//
// Five levels are defined, from [LevelTrace] (every resolved directive and
// cache hit) to [LevelError]. Records below the configured level are
// discarded before their attributes are encoded; [Logger.Allows] lets a
// caller skip building attributes altogether.
//
// # Output
//
// Records are encoded as [FormatJSON] (default) or [FormatText]. With
// [WithPretty], text is written without quoting and JSON is spread over
// several lines, both colored with lipgloss styles when the output is a
// terminal. [WithTimeLayout] accepts the names of the layouts in package
// [time] as well as custom layouts; "none" omits timestamps.
//
// # Package-Level Logger
//
// Functions such as [Info] and [DebugContext] write to a package-level
// logger that writes to standard error until replaced with [SetDefault] or
// changed with [Config]. Functions without a context use
// [DefaultContextProvider].
package log
