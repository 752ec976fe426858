//go:build windows

package steam

// Default returns the registry-backed resolver.
func Default() Resolver { return RegistryResolver{} }
