// Package java provides dependency handling for Maven projects.
//
// # Overview
//
// This package implements [deps.Language] for Java, supporting:
//
//   - Maven repository version listing via the [maven] client
//   - pom.xml and .mvn/extensions.xml parsing with byte spans
//   - Remote parent POM retrieval for property evaluation
//
// # File Parsing
//
// [POMParser] reads a whole file set at once. Every file becomes a node of
// the property graph, so ${...} references are evaluated through the
// parent chain:
//
//	result, err := java.Language.Parser().Parse(files)
//	guava, _ := result.Dependency("com.google.guava:guava")
//
// The parser reports the project's parent, dependencies (including
// dependencyManagement), plugins (groupId defaults to
// org.apache.maven.plugins) and extensions. Requirements read through a
// property carry property_name and property_source metadata and register a
// consumer of that property, which is how shared properties are detected.
//
// # Remote Parents
//
// [FetchParents] downloads parents that are not part of the project and
// adds them as remote support files under .maven/.
//
// [maven]: github.com/matzehuels/stackbump/pkg/integrations/maven
package java
