package maven

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/stackbump/pkg/cache"
	"github.com/matzehuels/stackbump/pkg/integrations"
)

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		coord        string
		wantGroup    string
		wantArtifact string
		wantErr      bool
	}{
		{"org.springframework:spring-core", "org.springframework", "spring-core", false},
		{"com.google.guava:guava", "com.google.guava", "guava", false},
		{"io.netty:netty-tcnative:linux-x86_64", "io.netty", "netty-tcnative", false},
		{"invalid", "", "", true},
		{":guava", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.coord, func(t *testing.T) {
			g, a, err := ParseCoordinate(tt.coord)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseCoordinate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if g != tt.wantGroup {
				t.Errorf("groupID = %v, want %v", g, tt.wantGroup)
			}
			if a != tt.wantArtifact {
				t.Errorf("artifactID = %v, want %v", a, tt.wantArtifact)
			}
		})
	}
}

const guavaMetadata = `<?xml version="1.0" encoding="UTF-8"?>
<metadata>
  <groupId>com.google.guava</groupId>
  <artifactId>guava</artifactId>
  <versioning>
    <latest>23.6-jre</latest>
    <release>23.6-jre</release>
    <versions>
      <version>23.4-jre</version>
      <version>23.5-jre</version>
      <version>23.6-jre</version>
    </versions>
    <lastUpdated>20171220144000</lastUpdated>
  </versioning>
</metadata>`

func TestClient_Releases(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/com/google/guava/guava/maven-metadata.xml" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(guavaMetadata))
	}))
	defer server.Close()

	c := testClient(t, server)

	releases, err := c.Releases(context.Background(), "com.google.guava:guava", true)
	if err != nil {
		t.Fatalf("Releases failed: %v", err)
	}
	if len(releases) != 3 {
		t.Fatalf("expected 3 releases, got %d", len(releases))
	}
	if releases[0].Version != "23.4-jre" || releases[2].Version != "23.6-jre" {
		t.Errorf("unexpected order: %+v", releases)
	}
	if !releases[0].Published.IsZero() {
		t.Error("only the newest release carries a timestamp")
	}
	want := time.Date(2017, 12, 20, 14, 40, 0, 0, time.UTC)
	if !releases[2].Published.Equal(want) {
		t.Errorf("published = %v, want %v", releases[2].Published, want)
	}
}

func TestClient_Releases_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := testClient(t, server)

	_, err := c.Releases(context.Background(), "org.example:missing", true)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_FetchPOM(t *testing.T) {
	const pom = `<project><groupId>org.example</groupId><artifactId>parent</artifactId></project>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/org/example/parent/1.0/parent-1.0.pom" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(pom))
	}))
	defer server.Close()

	c := testClient(t, server)

	got, err := c.FetchPOM(context.Background(), "org.example:parent", "1.0", true)
	if err != nil {
		t.Fatalf("FetchPOM failed: %v", err)
	}
	if got != pom {
		t.Errorf("FetchPOM() = %q", got)
	}

	if _, err := c.FetchPOM(context.Background(), "org.example:parent", "", true); err == nil {
		t.Error("expected error for empty version")
	}
}

func TestPOMURL(t *testing.T) {
	got := POMURL(DefaultBaseURL, "com.google.guava", "guava", "23.6-jre")
	want := "https://repo.maven.apache.org/maven2/com/google/guava/guava/23.6-jre/guava-23.6-jre.pom"
	if got != want {
		t.Errorf("POMURL() = %q, want %q", got, want)
	}
}

func testClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	c := NewClient(cache.NewNullCache(), time.Hour).WithBaseURL(server.URL)
	c.WithHTTPClient(server.Client())
	return c
}
