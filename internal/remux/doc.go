// Package remux waits for the host's remux of a finished recording and
// removes the superseded intermediate file.
//
// The host writes the recording in an intermediate container (e.g. .mkv)
// and, when automatic remux is enabled, produces the final container (e.g.
// .mp4) next to it in a separate process. The final file appears as soon as
// the remux starts; the intermediate stays locked until it finishes. The
// waiter therefore polls for the final file (woken early by fsnotify), then
// retries deletion of the intermediate until the lock is released or a
// deadline passes.
//
// When the final file never appears the intermediate is kept, since it is
// then the only copy of the recording, and the caller renames it instead.
package remux
