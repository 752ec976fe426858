//go:build !windows && !linux

package steam

// Default returns a resolver that never finds a game.
func Default() Resolver { return NopResolver{} }
