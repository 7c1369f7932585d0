// Package goproxy provides an HTTP client for the Go module proxy.
//
// # Overview
//
// Versions are read from https://proxy.golang.org/<module>/@v/list, with
// module paths escaped by [module.EscapePath] ("Azure" becomes "!azure").
// The @latest endpoint supplies a timestamp for the newest version and is
// the only source of versions for modules that were never tagged.
//
// # Usage
//
//	client := goproxy.NewClient(backend, 24*time.Hour)
//	releases, err := client.Releases(ctx, "github.com/spf13/cobra", false)
package goproxy
