//go:build linux

package steam

// Default returns the registry.vdf-backed resolver.
func Default() Resolver { return NewVDFResolver() }
