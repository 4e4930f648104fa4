package props

import (
	"log/slog"
	"strconv"

	"github.com/ardnew/recline/line"
)

// ErrSyntax is matched by every [*SyntaxError].
var ErrSyntax = line.NewError("invalid property")

// SyntaxError reports a logical line that does not define a property.
type SyntaxError struct {
	Reason string
	Line   line.Line
}

func (e *SyntaxError) Error() string {
	return e.Line.Source + ":" + strconv.Itoa(e.Line.Position) + ": " +
		strconv.Quote(e.Line.Text) + ": " + ErrSyntax.Error() + ": " + e.Reason
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// LogValue implements slog.LogValuer.
func (e *SyntaxError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrSyntax.Error()),
		slog.String("reason", e.Reason),
		slog.String("source", e.Line.Source),
		slog.Int("line", e.Line.Position),
		slog.String("text", e.Line.Text),
	)
}
