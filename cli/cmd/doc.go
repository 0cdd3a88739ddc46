// Package cmd implements the criteria subcommands.
package cmd

var (
	// CacheIdentifier is the kong variable holding the runtime cache
	// directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable holding the configuration file
	// path.
	ConfigIdentifier = "config"
)
