// Package pipeline runs rename tasks: one background task per finished
// recording or saved replay.
//
// A task waits for the remux to finish, removes the intermediate file,
// resolves a title fragment for the configured rename mode and renames the
// final file to <stem>_<fragment>.<ext>. Each task works from the config
// snapshot taken when its event arrived. Failures end the task and are
// logged; they never reach the caller.
package pipeline
