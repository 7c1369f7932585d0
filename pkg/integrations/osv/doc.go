// Package osv queries the OSV.dev vulnerability database and converts its
// records into [deps.SecurityAdvisory] values.
//
// # Usage
//
//	client := osv.NewClient(backend, time.Hour)
//	advisories, err := client.Advisories(ctx, "com.google.guava:guava", version.Maven, false)
//
// # Range Conversion
//
// OSV describes affected versions as ordered events. Each
// introduced/fixed pair becomes a half-open vulnerable range, and
// introduced/last_affected becomes a closed one. Boundaries are parsed in
// the dependency's own version family, so "23.5" in a Maven record compares
// with Maven ordering.
package osv
