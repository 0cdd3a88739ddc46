//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the module, embedded at build time.
var Version = strings.TrimSpace(version)

const (
	// Name is the command name. It appears in help text and default
	// configuration paths.
	Name = "criteria"
	// Description is a short summary used in help output.
	Description = "Evaluate criteria expressions against bound variables"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
