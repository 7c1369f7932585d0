// Package npm provides an HTTP client for the npm registry API.
//
// # Overview
//
// The client fetches a package document (the "packument") from
// https://registry.npmjs.org and reduces it to the versions, their
// publication times, and the dist-tags.
//
// # Usage
//
//	client := npm.NewClient(backend, 24*time.Hour)
//	releases, err := client.Releases(ctx, "express", false)
//
// Scoped packages ("@scope/name") are requested with the slash escaped.
// Publication times come from the packument's "time" map and are used to
// break ties between versions that compare equal.
package npm
