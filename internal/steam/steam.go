// Package steam reports which Steam application is currently running.
//
// The lookup is platform specific: the Windows client keeps its state in the
// per-user registry, the Linux client mirrors it into ~/.steam/registry.vdf,
// and other platforms are not supported. [Default] returns the resolver for
// the build platform; callers receive a [Resolver] and never branch on the
// OS themselves.
package steam

import "fmt"

// UnknownGameName is reported when a game is running but its display name
// cannot be determined.
const UnknownGameName = "Unknown Game"

// Game identifies a running Steam application.
type Game struct {
	ID   string
	Name string
}

func (g Game) String() string { return fmt.Sprintf("%s (%s)", g.Name, g.ID) }

// Resolver looks up the running game. A nil Game with a nil error means no
// game is running; a "key not found" condition is never an error. Lookups
// are read-only and never cached.
type Resolver interface {
	RunningGame() (*Game, error)
}

// NopResolver never finds a game. Used on platforms without a known Steam
// state source.
type NopResolver struct{}

// RunningGame always returns nil.
func (NopResolver) RunningGame() (*Game, error) { return nil, nil }

// ResolverFunc adapts a function to [Resolver].
type ResolverFunc func() (*Game, error)

// RunningGame calls f.
func (f ResolverFunc) RunningGame() (*Game, error) { return f() }

// notRunning reports whether a RunningAppID value means "nothing running".
func notRunning(id string) bool {
	return id == "" || id == "0"
}
