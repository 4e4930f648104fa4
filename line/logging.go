package line

import (
	"log/slog"
	"strconv"
)

func attrSource(id string) slog.Attr { return slog.String("source", id) }

func attrLine(n int) slog.Attr { return slog.Int("line", n) }

func attrPath(p string) slog.Attr { return slog.String("path", p) }

func attrPayload(p string) slog.Attr { return slog.String("payload", p) }

func attrDepth(d int) slog.Attr { return slog.Int("depth", d) }

func attrTrim(s string) slog.Attr { return slog.String("trim", s) }

func attrFeature(s string) slog.Attr { return slog.String("feature", s) }

func attrDigest(d uint64) slog.Attr {
	return slog.String("digest", strconv.FormatUint(d, 16))
}
