// Package updater rewrites requirement text in dependency files.
//
// Every rewrite targets a recorded byte span, never a search-and-replace,
// so an identical string elsewhere in the file (the project's own version,
// a comment) is never touched and the bytes around the span are preserved:
//
//	<version> 4.5.3 </version>   ->  <version> 4.6.1 </version>
//	<version>[4.5.3]</version>   ->  <version>[4.6.1]</version>
//
// [UpdateRequirement] computes new requirement text for a target version in
// the style of the old one. [Edits] turns an updated dependency into span
// edits, writing a property once at its definition. [Composer] and
// [UpdateFiles] combine the edits of several dependencies per file and
// return only the files that changed.
package updater
