// Package maven provides an HTTP client for Maven repositories.
//
// # Overview
//
// The client reads the repository layout directly rather than a search
// index: versions come from maven-metadata.xml and parent POMs are
// downloaded by coordinate and version.
//
// # Usage
//
//	client := maven.NewClient(backend, 24*time.Hour)
//	releases, err := client.Releases(ctx, "com.google.guava:guava", false)
//
// # Coordinates
//
// Artifacts are identified by "groupId:artifactId". A third classifier
// component is accepted and ignored.
//
// # Timestamps
//
// maven-metadata.xml records a single lastUpdated stamp, which is attached
// to the newest version only. All other releases have a zero Published time
// and fall back to listing order when versions tie.
package maven
