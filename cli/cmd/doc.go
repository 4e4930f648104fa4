// Package cmd provides the subcommands of recline.
//
// Each command reads its sources through a [line.Engine] configured with
// the options stored in its context by [WithLineOptions]:
//
//   - cat prints the preprocessed lines, optionally as JSON or YAML and
//     optionally again whenever a file it read changes
//   - props parses the lines as key-value properties
//   - browse filters the lines interactively
//   - init writes the current flags to the configuration file
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
