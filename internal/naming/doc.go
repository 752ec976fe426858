// Package naming builds the renamed path of a recording: it strips
// characters that are illegal in filenames from the title fragment, joins
// the fragment onto the host-assigned base name, and resolves destination
// collisions so a rename never silently replaces an existing file.
//
// Files: sanitize.go (Sanitize), path.go (RenamedPath), collision.go
// (CollisionResolver).
package naming
