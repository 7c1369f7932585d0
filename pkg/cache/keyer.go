package cache

// Keyer names cache entries.
type Keyer interface {
	// HTTPKey names a cached registry response.
	HTTPKey(namespace, key string) string
	// VersionsKey names the version list of a dependency.
	VersionsKey(registry, name string) string
	// ParseKey names the parse result of a file set, identified by the
	// hash of its contents.
	ParseKey(parserType, contentHash string) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard Keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// VersionsKey hashes the registry and name, so arbitrary names are safe.
func (DefaultKeyer) VersionsKey(registry, name string) string {
	return hashKey("versions", registry, name)
}

// ParseKey hashes the parser type with the content hash.
func (DefaultKeyer) ParseKey(parserType, contentHash string) string {
	return hashKey("parse", parserType, contentHash)
}
