// Package version carries build metadata injected with -ldflags.
package version

// Set at build time:
//
//	go build -ldflags "-X github.com/doeshing/bugsqa/internal/version.Version=v1.2.0"
var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)
