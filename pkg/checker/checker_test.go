package checker_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stackbump/pkg/checker"
	"github.com/matzehuels/stackbump/pkg/constraint"
	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/deps/java"
	"github.com/matzehuels/stackbump/pkg/propgraph"
	"github.com/matzehuels/stackbump/pkg/updater"
	"github.com/matzehuels/stackbump/pkg/version"
)

const parentPOM = `<project>
  <groupId>com.example</groupId>
  <artifactId>app-parent</artifactId>
  <version>1.0.0</version>
  <packaging>pom</packaging>
  <properties>
    <guava.version>23.3-jre</guava.version>
  </properties>
  <modules>
    <module>util</module>
  </modules>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>com.google.guava</groupId>
        <artifactId>guava</artifactId>
        <version>${guava.version}</version>
      </dependency>
    </dependencies>
  </dependencyManagement>
</project>`

const utilPOM = `<project>
  <parent>
    <groupId>com.example</groupId>
    <artifactId>app-parent</artifactId>
    <version>1.0.0</version>
  </parent>
  <artifactId>util</artifactId>
  <dependencies>
    <dependency>
      <groupId>com.google.guava</groupId>
      <artifactId>guava</artifactId>
    </dependency>
  </dependencies>
</project>`

const springPOM = `<project>
  <groupId>com.example</groupId>
  <artifactId>web</artifactId>
  <version>0.1.0</version>
  <properties>
    <springframework.version>4.3.12.RELEASE</springframework.version>
  </properties>
  <dependencies>
    <dependency>
      <groupId>org.springframework</groupId>
      <artifactId>spring-beans</artifactId>
      <version>${springframework.version}</version>
    </dependency>
    <dependency>
      <groupId>org.springframework</groupId>
      <artifactId>spring-context</artifactId>
      <version>${springframework.version}</version>
    </dependency>
  </dependencies>
</project>`

type project struct {
	files []*deps.DependencyFile
	res   *deps.ParseResult
	graph *propgraph.Graph
}

func parseProject(t *testing.T, pairs ...string) project {
	t.Helper()
	var files []*deps.DependencyFile
	for i := 0; i+1 < len(pairs); i += 2 {
		files = append(files, &deps.DependencyFile{Name: pairs[i], Content: pairs[i+1]})
	}
	res, err := (&java.POMParser{}).Parse(files)
	require.NoError(t, err)
	g, err := propgraph.New(res.Nodes, propgraph.WithConsumers(res.Consumers...))
	require.NoError(t, err)
	return project{files: files, res: res, graph: g}
}

func (p project) input(t *testing.T, name string, available ...string) checker.Input {
	t.Helper()
	dep, ok := p.res.Dependency(name)
	require.True(t, ok, "dependency %s not parsed", name)
	return checker.Input{
		Dependency:      dep,
		Family:          version.Maven,
		Available:       version.ParseAll(available, version.Maven),
		Graph:           p.graph,
		AllDependencies: p.res.Dependencies,
	}
}

func TestGuavaPropertyUpdate(t *testing.T) {
	p := parseProject(t, "pom.xml", parentPOM, "util/pom.xml", utilPOM)
	in := p.input(t, "com.google.guava:guava",
		"23.0", "23.3-jre", "23.4-jre", "23.5-android", "23.6-jre", "24.0-rc1-jre", "20030203.000550")
	c := checker.New(in)

	latest, ok := c.LatestVersion()
	require.True(t, ok)
	require.Equal(t, "23.6-jre", latest.String())
	require.False(t, c.SharedProperty())
	require.True(t, c.CanUpdate(checker.UnlockOwn))

	d := c.Decide()
	require.Equal(t, checker.ReasonUpdate, d.Reason)
	require.Len(t, d.Dependencies, 1)

	updated := d.Dependencies[0]
	require.Equal(t, "23.6-jre", updated.Version)
	require.Equal(t, "23.3-jre", updated.PreviousVersion)
	require.Len(t, updated.Requirements, 2)
	require.Equal(t, "23.6-jre", updated.Requirements[0].Requirement)
	require.True(t, updated.Requirements[1].IsNil())
	require.Equal(t, "23.3-jre", updated.PreviousRequirements[0].Requirement)

	files, err := updater.UpdateFiles(p.files, p.graph, d.Dependencies)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "pom.xml", files[0].Name)
	require.Contains(t, files[0].Content, "<guava.version>23.6-jre</guava.version>")
	require.Contains(t, files[0].Content, "<version>${guava.version}</version>")
}

func TestAmbiguousSharedProperty(t *testing.T) {
	p := parseProject(t, "pom.xml", springPOM)
	in := p.input(t, "org.springframework:spring-beans", "4.3.12.RELEASE", "5.0.0.RELEASE", "5.0.2.RELEASE")
	in.SiblingVersions = map[string][]version.Version{
		"org.springframework:spring-context": version.ParseAll([]string{"4.3.12.RELEASE", "5.0.0.RELEASE"}, version.Maven),
	}
	in.Options.FullUnlock = true
	c := checker.New(in)

	require.True(t, c.SharedProperty())
	require.Equal(t, []string{"org.springframework:spring-context"}, c.Siblings())
	require.False(t, c.LatestVersionResolvableWithFullUnlock())
	_, ok := c.PreferredResolvableVersion()
	require.False(t, ok)
	require.False(t, c.CanUpdate(checker.UnlockOwn))

	_, err := c.UpdatedDependenciesAfterFullUnlock()
	require.Error(t, err)

	d := c.Decide()
	require.Equal(t, checker.ReasonSharedProperty, d.Reason)
	require.Empty(t, d.Dependencies)

	files, err := updater.UpdateFiles(p.files, p.graph, d.Dependencies)
	require.NoError(t, err)
	require.Empty(t, files)
}

func TestSharedPropertyFullUnlock(t *testing.T) {
	p := parseProject(t, "pom.xml", springPOM)
	in := p.input(t, "org.springframework:spring-beans", "4.3.12.RELEASE", "5.0.0.RELEASE", "5.0.2.RELEASE")
	in.SiblingVersions = map[string][]version.Version{
		"org.springframework:spring-context": version.ParseAll([]string{"4.3.12.RELEASE", "5.0.2.RELEASE"}, version.Maven),
	}

	t.Run("without full unlock", func(t *testing.T) {
		d := checker.New(in).Decide()
		require.Equal(t, checker.ReasonSharedProperty, d.Reason)
	})

	in.Options.FullUnlock = true
	c := checker.New(in)
	require.True(t, c.LatestVersionResolvableWithFullUnlock())
	require.True(t, c.CanUpdate(checker.UnlockAll))

	d := c.Decide()
	require.Equal(t, checker.ReasonUpdate, d.Reason)
	require.Len(t, d.Dependencies, 2)
	for _, dep := range d.Dependencies {
		require.Equal(t, "5.0.2.RELEASE", dep.Version)
		require.Equal(t, "5.0.2.RELEASE", dep.Requirements[0].Requirement)
	}

	files, err := updater.UpdateFiles(p.files, p.graph, d.Dependencies)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Contains(t, files[0].Content, "<springframework.version>5.0.2.RELEASE</springframework.version>")
}

func TestSiblingWithoutListingBlocks(t *testing.T) {
	p := parseProject(t, "pom.xml", springPOM)
	in := p.input(t, "org.springframework:spring-beans", "4.3.12.RELEASE", "5.0.2.RELEASE")
	in.Options.FullUnlock = true
	c := checker.New(in)
	require.False(t, c.LatestVersionResolvableWithFullUnlock())

	_, err := c.UpdatedDependenciesAfterFullUnlock()
	require.Error(t, err)

	d := c.Decide()
	require.Equal(t, checker.ReasonSharedProperty, d.Reason)
	require.Empty(t, d.Dependencies)
}

func TestSecurityFixIsMinimal(t *testing.T) {
	p := parseProject(t, "pom.xml", parentPOM, "util/pom.xml", utilPOM)
	in := p.input(t, "com.google.guava:guava", "23.3-jre", "23.4-jre", "23.5-jre", "23.6-jre")
	in.Advisories = []deps.SecurityAdvisory{{
		ID:             "GHSA-test",
		DependencyName: "com.google.guava:guava",
		Vulnerable:     []constraint.Constraint{constraint.MustParse("< 23.5.0", version.Maven)},
	}}
	c := checker.New(in)

	require.True(t, c.Vulnerable())
	fix, ok := c.LowestSecurityFixVersion()
	require.True(t, ok)
	require.Equal(t, "23.5-jre", fix.String())

	d := c.Decide()
	require.Equal(t, checker.ReasonSecurityFix, d.Reason)
	require.NotNil(t, d.Target)
	require.Equal(t, "23.5-jre", d.Target.String())
	require.Equal(t, "23.5-jre", d.Dependencies[0].Requirements[0].Requirement)
}

func TestSecurityOnly(t *testing.T) {
	p := parseProject(t, "pom.xml", parentPOM, "util/pom.xml", utilPOM)
	in := p.input(t, "com.google.guava:guava", "23.3-jre", "23.6-jre")
	in.Options.SecurityOnly = true
	require.Equal(t, checker.ReasonNotVulnerable, checker.New(in).Decide().Reason)
}

func TestRemoteProperty(t *testing.T) {
	base := `<project>
  <groupId>org.example</groupId>
  <artifactId>base</artifactId>
  <version>1.0</version>
  <packaging>pom</packaging>
  <properties>
    <lib.version>2.1</lib.version>
  </properties>
</project>`
	child := `<project>
  <parent>
    <groupId>org.example</groupId>
    <artifactId>base</artifactId>
    <version>1.0</version>
  </parent>
  <artifactId>app</artifactId>
  <dependencies>
    <dependency>
      <groupId>org.lib</groupId>
      <artifactId>lib</artifactId>
      <version>${lib.version}</version>
    </dependency>
  </dependencies>
</project>`
	remote := java.RemoteFile(java.ParentPOM{GroupID: "org.example", ArtifactID: "base", Version: "1.0"}, base)
	files := []*deps.DependencyFile{{Name: "pom.xml", Content: child}, remote}
	res, err := (&java.POMParser{}).Parse(files)
	require.NoError(t, err)
	g, err := propgraph.New(res.Nodes, propgraph.WithConsumers(res.Consumers...))
	require.NoError(t, err)

	dep, ok := res.Dependency("org.lib:lib")
	require.True(t, ok)
	c := checker.New(checker.Input{
		Dependency: dep,
		Family:     version.Maven,
		Available:  version.ParseAll([]string{"2.1", "2.2"}, version.Maven),
		Graph:      g,
	})
	require.False(t, c.RequirementsUnlockable())
	require.False(t, c.CanUpdate(checker.UnlockOwn))

	d := c.Decide()
	require.Equal(t, checker.ReasonNoResolvableVersion, d.Reason)
	require.Contains(t, d.Detail, "outside the project")
}

func literal(name, req string) deps.Dependency {
	return deps.Dependency{
		Name:         name,
		Version:      req,
		Requirements: []deps.Requirement{{File: "pom.xml", Requirement: req, Span: deps.Span{Start: 10, End: 10 + len(req)}}},
	}
}

func TestLatestVersionFilters(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		available []string
		ignored   []string
		allowPre  bool
		want      string // "" when none
	}{
		{"highest", "1.0", []string{"1.0", "1.1", "1.2"}, nil, false, "1.2"},
		{"skips prerelease", "1.0", []string{"1.0", "1.1", "2.0-rc1"}, nil, false, "1.1"},
		{"prerelease current", "2.0-beta1", []string{"1.1", "2.0-beta1", "2.0-rc1"}, nil, false, "2.0-rc1"},
		{"prerelease of another release", "2.0-beta1", []string{"1.1", "2.0-beta1", "2.0", "3.0-alpha1"}, nil, false, "2.0"},
		{"allow prerelease", "1.0", []string{"1.0", "2.0-rc1"}, nil, true, "2.0-rc1"},
		{"skips date based", "1.0", []string{"1.0", "1.1", "20030203.000550"}, nil, false, "1.1"},
		{"date based current", "20030203", []string{"20030203", "20040616"}, nil, false, "20040616"},
		{"same type", "23.0-android", []string{"23.0-android", "23.6-android", "23.6-jre"}, nil, false, "23.6-android"},
		{"untyped stays untyped", "23.0", []string{"23.0", "23.6-jre", "23.5"}, nil, false, "23.5"},
		{"ignored", "1.0", []string{"1.0", "1.1", "1.2"}, []string{"[1.2,)"}, false, "1.1"},
		{"all ignored", "1.0", []string{"1.1", "1.2"}, []string{"[1.1,)"}, false, ""},
		{"nothing published", "1.0", nil, nil, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ignored, err := constraint.ParseAll(tt.ignored, version.Maven)
			require.NoError(t, err)
			c := checker.New(checker.Input{
				Dependency: literal("org.example:lib", tt.current),
				Family:     version.Maven,
				Available:  version.ParseAll(tt.available, version.Maven),
				Ignored:    ignored,
				Options:    checker.Options{AllowPrerelease: tt.allowPre},
			})
			got, ok := c.LatestVersion()
			if tt.want == "" {
				require.False(t, ok, "got %s", got)
				return
			}
			require.True(t, ok)
			require.Equal(t, tt.want, got.String())
		})
	}
}

func TestLatestVersionPrereleaseChannel(t *testing.T) {
	tests := []struct {
		current   string
		available []string
		want      string
	}{
		{"1.0.0-beta.1", []string{"1.0.0-beta.1", "1.0.0-beta.2", "1.0.0", "2.0.0-alpha.1"}, "1.0.0"},
		{"1.0.0-beta.1", []string{"1.0.0-beta.1", "1.0.0-beta.2", "2.0.0-alpha.1"}, "1.0.0-beta.2"},
		{"1.0.0-beta.1", []string{"1.0.0-beta.1", "1.1.0-rc.1"}, "1.0.0-beta.1"},
		{"1.0.0", []string{"1.0.0", "1.0.1-rc.1"}, "1.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.current+"/"+tt.want, func(t *testing.T) {
			c := checker.New(checker.Input{
				Dependency: deps.Dependency{Name: "lib", Version: tt.current},
				Family:     version.Npm,
				Available:  version.ParseAll(tt.available, version.Npm),
			})
			got, ok := c.LatestVersion()
			require.True(t, ok)
			require.Equal(t, tt.want, got.String())
		})
	}
}

func TestAllVersionsIgnored(t *testing.T) {
	c := checker.New(checker.Input{
		Dependency: literal("org.example:lib", "1.0"),
		Family:     version.Maven,
		Available:  version.ParseAll([]string{"1.0", "1.1"}, version.Maven),
		Ignored:    []constraint.Constraint{constraint.MustParse("[1.0,)", version.Maven)},
	})
	require.True(t, c.AllVersionsIgnored())
	require.False(t, c.CanUpdate(checker.UnlockOwn))
	require.Equal(t, checker.ReasonAllVersionsIgnored, c.Decide().Reason)
}

func TestUpToDate(t *testing.T) {
	c := checker.New(checker.Input{
		Dependency: literal("org.example:lib", "1.1"),
		Family:     version.Maven,
		Available:  version.ParseAll([]string{"1.0", "1.1"}, version.Maven),
	})
	require.True(t, c.UpToDate())
	require.False(t, c.CanUpdate(checker.UnlockOwn))
	d := c.Decide()
	require.Equal(t, checker.ReasonUpToDate, d.Reason)
	require.Empty(t, d.Dependencies)
}

func TestRangeWithoutVersion(t *testing.T) {
	dep := deps.Dependency{
		Name: "left-pad",
		Requirements: []deps.Requirement{
			{File: "package.json", Requirement: "^1.2.0", Span: deps.Span{Start: 40, End: 46}},
			{File: "packages/a/package.json", Requirement: "~1.2.1", Span: deps.Span{Start: 40, End: 46}},
		},
	}
	c := checker.New(checker.Input{
		Dependency: dep,
		Family:     version.Npm,
		Available:  version.ParseAll([]string{"1.2.0", "1.2.1", "1.3.0", "2.1.0"}, version.Npm),
	})

	current, ok := c.CurrentVersion()
	require.True(t, ok)
	require.Equal(t, "1.2.1", current.String())

	v, ok := c.LatestResolvableVersionWithNoUnlock()
	require.True(t, ok)
	require.Equal(t, "1.2.1", v.String())
	require.False(t, c.CanUpdate(checker.UnlockNone))

	reqs := c.UpdatedRequirements(version.MustParse("2.1.0", version.Npm))
	require.Equal(t, "^2.1.0", reqs[0].Requirement)
	require.Equal(t, "~2.1.0", reqs[1].Requirement)

	d := c.Decide()
	require.Equal(t, checker.ReasonUpdate, d.Reason)
	require.Equal(t, "2.1.0", d.Target.String())
}

func TestWidenStrategy(t *testing.T) {
	dep := deps.Dependency{
		Name:         "react",
		Requirements: []deps.Requirement{{File: "package.json", Requirement: "^17.0.2", Span: deps.Span{Start: 20, End: 27}}},
	}
	c := checker.New(checker.Input{
		Dependency: dep,
		Family:     version.Npm,
		Available:  version.ParseAll([]string{"17.0.2", "18.2.0"}, version.Npm),
		Options:    checker.Options{RequirementsStrategy: updater.StrategyWiden},
	})
	d := c.Decide()
	require.Equal(t, checker.ReasonUpdate, d.Reason)
	require.Equal(t, "^17.0.2 || ^18.2.0", d.Dependencies[0].Requirements[0].Requirement)
}

func TestReasonText(t *testing.T) {
	data, err := json.Marshal(checker.Decision{Reason: checker.ReasonSharedProperty})
	require.NoError(t, err)
	require.JSONEq(t, `{"reason":"shared_property"}`, string(data))

	var got struct {
		Reason checker.Reason `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, checker.ReasonSharedProperty, got.Reason)

	require.Error(t, json.Unmarshal([]byte(`{"reason":"sideways"}`), &got))
}
