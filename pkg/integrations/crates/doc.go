// Package crates provides an HTTP client for the crates.io API.
//
// # Overview
//
// This package fetches the version list of a crate from crates.io
// (https://crates.io), the Rust community's package registry.
//
// # Usage
//
//	client := crates.NewClient(backend, 24*time.Hour)
//	releases, err := client.Releases(ctx, "serde", false)
//
// # Yanked Versions
//
// Yanked versions are dropped from the result. Every remaining release
// carries its created_at timestamp.
//
// # User-Agent
//
// crates.io rejects requests without a User-Agent; the client always sends
// [integrations.UserAgent].
package crates
