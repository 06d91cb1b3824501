// Command keytree is a storage-backend CLI and API server: it maps a
// hierarchical key space onto a directory tree or S3 bucket and exposes
// object CRUD plus resumable, cursor-driven subtree listings.
package main

import (
	"github.com/arborlabs/keytree/internal/cmd"
)

// Build metadata, injected via -ldflags.
var (
	version   = "dev"
	commit    = "HEAD"
	buildDate = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, buildDate)
	cmd.Execute()
}
