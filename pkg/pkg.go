//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of recline, read from the VERSION file at
// build time.
var Version = strings.TrimSpace(version)

const (
	// Name is the command name. It prefixes environment variables and names
	// the configuration and cache directories.
	Name = "recline"
	// Description is the one-line summary shown in help output.
	Description = "Recursive line preprocessor"
)

// AuthorInfo identifies one author.
type AuthorInfo struct {
	Name  string
	Email string
}

func (a AuthorInfo) String() string {
	switch {
	case a.Email == "":
		return a.Name
	case a.Name == "":
		return "<" + a.Email + ">"
	default:
		return a.Name + " <" + a.Email + ">"
	}
}

// Author lists the authors credited by [Banner].
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}

// Banner returns the text printed by --version, for example
// "recline 0.1.0 (ardnew <andrew@ardnew.com>)".
func Banner() string {
	var b strings.Builder

	b.WriteString(Name)
	b.WriteByte(' ')
	b.WriteString(Version)

	for i, a := range Author {
		if i == 0 {
			b.WriteString(" (")
		} else {
			b.WriteString(", ")
		}

		b.WriteString(a.String())

		if i == len(Author)-1 {
			b.WriteByte(')')
		}
	}

	return b.String()
}
