// Package integrations provides HTTP clients for package registry APIs.
//
// # Overview
//
// This package contains the shared [Client] and the low-level API clients
// that list published versions. Each registry has its own subpackage:
//
//   - [maven]: Maven repositories (maven-metadata.xml, parent POMs)
//   - [npm]: the npm registry (packuments with publication times)
//   - [goproxy]: the Go module proxy (@v/list)
//   - [crates]: crates.io (non-yanked versions)
//   - [osv]: OSV.dev security advisories
//
// # Client Pattern
//
// All version clients follow a consistent pattern and implement
// [deps.Fetcher]:
//
//	client := npm.NewClient(backend, 24*time.Hour)       // cache, TTL
//	releases, err := client.Releases(ctx, "express", false) // false = use cache
//
// Clients handle:
//   - HTTP requests with retry and backoff on 429 and 5xx responses
//   - Response caching through any [cache.Cache] backend
//   - API-specific parsing into [deps.Release] values
//
// # Shared Infrastructure
//
// [Client.Cached] wraps a fetch in a cache lookup keyed by the client's
// namespace. [ErrNotFound] and [ErrNetwork] are the sentinels every client
// wraps, so callers can test failures with errors.Is regardless of the
// registry involved.
//
// # Adding a New Registry
//
//  1. Create a subpackage: pkg/integrations/<registry>/
//  2. Define response structs matching the API schema
//  3. Embed *integrations.Client and implement Releases
//  4. Wire the client into the ecosystem's deps.Language
package integrations
