package java

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/errors"
)

const parentPOM = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <groupId>com.example</groupId>
  <artifactId>app-parent</artifactId>
  <version>1.0.0</version>
  <packaging>pom</packaging>

  <properties>
    <guava.version>23.3-jre</guava.version>
    <junit.version>4.12</junit.version>
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

  <dependencies>
    <dependency>
      <groupId>junit</groupId>
      <artifactId>junit</artifactId>
      <version>${junit.version}</version>
      <scope>test</scope>
    </dependency>
  </dependencies>

  <build>
    <plugins>
      <plugin>
        <artifactId>maven-compiler-plugin</artifactId>
        <version>3.7.0</version>
      </plugin>
    </plugins>
  </build>
</project>`

const utilPOM = `<?xml version="1.0" encoding="UTF-8"?>
<project>
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
    <dependency>
      <groupId>${project.groupId}</groupId>
      <artifactId>app-parent</artifactId>
      <version>${project.version}</version>
    </dependency>
  </dependencies>
</project>`

func files(pairs ...string) []*deps.DependencyFile {
	var out []*deps.DependencyFile
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, &deps.DependencyFile{Name: pairs[i], Content: pairs[i+1]})
	}
	return out
}

func spanText(t *testing.T, content string, s deps.Span) string {
	t.Helper()
	if s.Start < 0 || s.End > len(content) || s.Start > s.End {
		t.Fatalf("span %+v out of range", s)
	}
	return content[s.Start:s.End]
}

func TestPOMParser_Supports(t *testing.T) {
	parser := &POMParser{}

	tests := []struct {
		filename string
		want     bool
	}{
		{"pom.xml", true},
		{"core/pom.xml", true},
		{".mvn/extensions.xml", true},
		{"Pom.xml", false},
		{"build.gradle", false},
		{"package.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := parser.Supports(tt.filename); got != tt.want {
				t.Errorf("Supports(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestPOMParser_Type(t *testing.T) {
	parser := &POMParser{}
	if got := parser.Type(); got != "pom.xml" {
		t.Errorf("Type() = %q, want %q", got, "pom.xml")
	}
}

func TestPOMParser_Multimodule(t *testing.T) {
	set := files("pom.xml", parentPOM, "util/pom.xml", utilPOM)
	result, err := (&POMParser{}).Parse(set)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var names []string
	for _, d := range result.Dependencies {
		names = append(names, d.Name)
	}
	want := "com.google.guava:guava,junit:junit,org.apache.maven.plugins:maven-compiler-plugin"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("dependencies = %s, want %s", got, want)
	}

	guava, _ := result.Dependency("com.google.guava:guava")
	if guava.Version != "23.3-jre" {
		t.Errorf("guava version = %q", guava.Version)
	}
	if len(guava.Requirements) != 2 {
		t.Fatalf("guava requirements = %d, want 2", len(guava.Requirements))
	}

	root := guava.Requirements[0]
	if root.File != "pom.xml" || root.Requirement != "23.3-jre" {
		t.Errorf("root requirement = %+v", root)
	}
	if root.PropertyName() != "guava.version" || root.PropertySource() != "pom.xml" {
		t.Errorf("property metadata = %v", root.Metadata)
	}
	if got := spanText(t, parentPOM, root.Span); got != "${guava.version}" {
		t.Errorf("requirement span covers %q", got)
	}
	if root.Metadata[deps.MetaPackagingType] != "jar" {
		t.Errorf("packaging_type = %q", root.Metadata[deps.MetaPackagingType])
	}

	child := guava.Requirements[1]
	if child.File != "util/pom.xml" || !child.IsNil() {
		t.Errorf("managed child requirement = %+v, want nil requirement", child)
	}

	junit, _ := result.Dependency("junit:junit")
	if len(junit.Requirements[0].Groups) != 1 || junit.Requirements[0].Groups[0] != "test" {
		t.Errorf("junit groups = %v", junit.Requirements[0].Groups)
	}

	plugin, _ := result.Dependency("org.apache.maven.plugins:maven-compiler-plugin")
	if got := spanText(t, parentPOM, plugin.Requirements[0].Span); got != "3.7.0" {
		t.Errorf("plugin span covers %q", got)
	}
}

func TestPOMParser_Nodes(t *testing.T) {
	result, err := (&POMParser{}).Parse(files("pom.xml", parentPOM, "util/pom.xml", utilPOM))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Nodes) != 2 {
		t.Fatalf("nodes = %d, want 2", len(result.Nodes))
	}

	root := result.Nodes[0]
	if root.Coordinates != "com.example:app-parent" {
		t.Errorf("root coordinates = %q", root.Coordinates)
	}
	def, ok := root.Definition("guava.version")
	if !ok || def.Value != "23.3-jre" {
		t.Fatalf("guava.version definition = %+v", def)
	}
	if got := spanText(t, parentPOM, def.Span); got != "23.3-jre" {
		t.Errorf("definition span covers %q", got)
	}

	util := result.Nodes[1]
	if util.Coordinates != "com.example:util" {
		t.Errorf("util coordinates inherit the parent groupId, got %q", util.Coordinates)
	}
	if util.Parent.Path != "../pom.xml" || util.Parent.Explicit {
		t.Errorf("util parent = %+v, want default relative path", util.Parent)
	}
	if util.Builtins["project.version"] != "1.0.0" {
		t.Errorf("project.version = %q, want parent version", util.Builtins["project.version"])
	}

	if len(result.Consumers) != 2 {
		t.Fatalf("consumers = %+v", result.Consumers)
	}
	c := result.Consumers[0]
	if c.Property != "guava.version" || c.DefiningFile != "pom.xml" || c.Dependency != "com.google.guava:guava" {
		t.Errorf("consumer = %+v", c)
	}
}

func TestPOMParser_ChildReadsParentProperty(t *testing.T) {
	child := `<project>
  <parent>
    <groupId>com.example</groupId>
    <artifactId>app-parent</artifactId>
    <version>1.0.0</version>
  </parent>
  <artifactId>core</artifactId>
  <dependencies>
    <dependency>
      <groupId>com.google.guava</groupId>
      <artifactId>guava</artifactId>
      <version>${guava.version}</version>
    </dependency>
  </dependencies>
</project>`
	result, err := (&POMParser{}).Parse(files("pom.xml", parentPOM, "core/pom.xml", child))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	guava, _ := result.Dependency("com.google.guava:guava")
	r := guava.Requirements[1]
	if r.File != "core/pom.xml" || r.Requirement != "23.3-jre" || r.PropertySource() != "pom.xml" {
		t.Errorf("child requirement = %+v", r)
	}
}

func TestPOMParser_Details(t *testing.T) {
	content := `<project>
  <groupId>com.example</groupId>
  <artifactId>app</artifactId>
  <version>2.0</version>
  <parent>
    <groupId>org.springframework.boot</groupId>
    <artifactId>spring-boot-starter-parent</artifactId>
    <version>1.5.9.RELEASE</version>
    <relativePath/>
  </parent>
  <dependencies>
    <dependency>
      <groupId>io.netty</groupId>
      <artifactId>netty-tcnative</artifactId>
      <classifier>linux-x86_64</classifier>
      <version> 2.0.7.Final </version>
    </dependency>
    <dependency>
      <groupId>org.apache.httpcomponents</groupId>
      <artifactId>httpclient</artifactId>
      <version>4.5.3<!--updateme--></version>
    </dependency>
    <dependency>
      <groupId>org.slf4j</groupId>
      <artifactId>slf4j-api</artifactId>
      <version>[1.7,1.8)</version>
    </dependency>
    <dependency>
      <groupId>org.pinned</groupId>
      <artifactId>pinned</artifactId>
      <version>[1.2.3]</version>
      <type>pom</type>
    </dependency>
    <dependency>
      <groupId>com.example</groupId>
      <artifactId>app</artifactId>
      <version>2.0</version>
    </dependency>
  </dependencies>
</project>`
	result, err := (&POMParser{}).Parse(files("pom.xml", content))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	tests := []struct {
		name        string
		version     string
		requirement string
		spanText    string
		packaging   string
	}{
		{"org.springframework.boot:spring-boot-starter-parent", "1.5.9.RELEASE", "1.5.9.RELEASE", "1.5.9.RELEASE", "pom"},
		{"io.netty:netty-tcnative:linux-x86_64", "2.0.7.Final", "2.0.7.Final", "2.0.7.Final", "jar"},
		{"org.apache.httpcomponents:httpclient", "4.5.3", "4.5.3", "4.5.3", "jar"},
		{"org.slf4j:slf4j-api", "", "[1.7,1.8)", "[1.7,1.8)", "jar"},
		{"org.pinned:pinned", "1.2.3", "[1.2.3]", "[1.2.3]", "pom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := result.Dependency(tt.name)
			if !ok {
				t.Fatalf("dependency %s not found", tt.name)
			}
			r := d.Requirements[0]
			if d.Version != tt.version {
				t.Errorf("Version = %q, want %q", d.Version, tt.version)
			}
			if r.Requirement != tt.requirement {
				t.Errorf("Requirement = %q, want %q", r.Requirement, tt.requirement)
			}
			if got := spanText(t, content, r.Span); got != tt.spanText {
				t.Errorf("span covers %q, want %q", got, tt.spanText)
			}
			if got := r.Metadata[deps.MetaPackagingType]; got != tt.packaging {
				t.Errorf("packaging_type = %q, want %q", got, tt.packaging)
			}
		})
	}

	if _, ok := result.Dependency("com.example:app"); ok {
		t.Error("the project's own artifact must be skipped")
	}
	if node := result.Nodes[0]; !node.Parent.Explicit || node.Parent.Path != "" {
		t.Errorf("empty relativePath should be explicit and empty, got %+v", node.Parent)
	}
}

func TestPOMParser_Extensions(t *testing.T) {
	ext := `<extensions xmlns="http://maven.apache.org/EXTENSIONS/1.0.0">
  <extension>
    <groupId>io.takari.maven</groupId>
    <artifactId>takari-smart-builder</artifactId>
    <version>0.6.1</version>
  </extension>
</extensions>`
	result, err := (&POMParser{}).Parse(files(".mvn/extensions.xml", ext))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	d, ok := result.Dependency("io.takari.maven:takari-smart-builder")
	if !ok || d.Version != "0.6.1" {
		t.Errorf("extension = %+v", d)
	}
}

func TestPOMParser_PropertyNotFound(t *testing.T) {
	content := `<project>
  <groupId>com.example</groupId>
  <artifactId>app</artifactId>
  <dependencies>
    <dependency>
      <groupId>com.google.guava</groupId>
      <artifactId>guava</artifactId>
      <version>${missing.version}</version>
    </dependency>
  </dependencies>
</project>`
	_, err := (&POMParser{}).Parse(files("pom.xml", content))
	if !errors.Is(err, errors.ErrCodePropertyNotFound) {
		t.Fatalf("expected PROPERTY_NOT_FOUND, got %v", err)
	}

	// One good dependency keeps the file evaluable.
	withGood := strings.Replace(content, "<dependencies>", `<dependencies>
    <dependency>
      <groupId>junit</groupId>
      <artifactId>junit</artifactId>
      <version>4.12</version>
    </dependency>`, 1)
	result, err := (&POMParser{}).Parse(files("pom.xml", withGood))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Dependencies) != 1 {
		t.Errorf("dependencies = %+v", result.Dependencies)
	}
}

func TestPOMParser_Malformed(t *testing.T) {
	_, err := (&POMParser{}).Parse(files("pom.xml", "<project><dependencies></project>"))
	if !errors.Is(err, errors.ErrCodeInvalidManifest) {
		t.Errorf("expected INVALID_MANIFEST, got %v", err)
	}
}

func TestPOMParser_SupportFilesContributeNoDependencies(t *testing.T) {
	set := files("pom.xml", parentPOM)
	set[0].SupportFile = true
	result, err := (&POMParser{}).Parse(set)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Dependencies) != 0 || len(result.Nodes) != 1 {
		t.Errorf("support file produced %d dependencies and %d nodes", len(result.Dependencies), len(result.Nodes))
	}
}

type fakePOMFetcher map[string]string

func (f fakePOMFetcher) FetchPOM(_ context.Context, coordinate, version string, _ bool) (string, error) {
	if c, ok := f[coordinate+":"+version]; ok {
		return c, nil
	}
	return "", fmt.Errorf("no pom for %s:%s", coordinate, version)
}

func TestFetchParents(t *testing.T) {
	app := `<project>
  <parent>
    <groupId>org.springframework.boot</groupId>
    <artifactId>spring-boot-starter-parent</artifactId>
    <version>1.5.9.RELEASE</version>
  </parent>
  <artifactId>app</artifactId>
  <dependencies>
    <dependency>
      <groupId>org.slf4j</groupId>
      <artifactId>slf4j-api</artifactId>
      <version>${slf4j.version}</version>
    </dependency>
  </dependencies>
</project>`
	starter := `<project>
  <parent>
    <groupId>org.springframework.boot</groupId>
    <artifactId>spring-boot-dependencies</artifactId>
    <version>1.5.9.RELEASE</version>
  </parent>
  <artifactId>spring-boot-starter-parent</artifactId>
</project>`
	bom := `<project>
  <groupId>org.springframework.boot</groupId>
  <artifactId>spring-boot-dependencies</artifactId>
  <version>1.5.9.RELEASE</version>
  <properties><slf4j.version>1.7.25</slf4j.version></properties>
</project>`
	fetcher := fakePOMFetcher{
		"org.springframework.boot:spring-boot-starter-parent:1.5.9.RELEASE": starter,
		"org.springframework.boot:spring-boot-dependencies:1.5.9.RELEASE":   bom,
	}

	set := files("pom.xml", app)
	added, err := FetchParents(context.Background(), set, fetcher, 5)
	if err != nil {
		t.Fatalf("FetchParents failed: %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("added %d parents, want 2", len(added))
	}
	if !added[0].Remote || !added[0].SupportFile {
		t.Errorf("remote parent flags = %+v", added[0])
	}

	result, err := (&POMParser{}).Parse(append(set, added...))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	slf4j, ok := result.Dependency("org.slf4j:slf4j-api")
	if !ok {
		t.Fatal("slf4j-api not found")
	}
	r := slf4j.Requirements[0]
	if r.Requirement != "1.7.25" || !strings.HasPrefix(r.PropertySource(), ".maven/") {
		t.Errorf("requirement = %+v", r)
	}
	if !result.Nodes[2].External {
		t.Error("remote nodes must be marked external")
	}
}

func TestMissingParentsSkipsLocalAndPropertyVersions(t *testing.T) {
	child := `<project>
  <parent><groupId>org.x</groupId><artifactId>y</artifactId><version>${revision}</version></parent>
  <artifactId>z</artifactId>
</project>`
	missing, err := MissingParents(files("pom.xml", parentPOM, "util/pom.xml", utilPOM, "z/pom.xml", child))
	if err != nil {
		t.Fatal(err)
	}
	if len(missing) != 0 {
		t.Errorf("MissingParents() = %+v, want none", missing)
	}
}
