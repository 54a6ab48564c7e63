// Package engine runs update cycles against one installation root.
//
// A cycle fetches the remote manifest, reconciles it with the files on disk,
// removes stale mods, downloads what is missing or outdated, makes sure the
// target version descriptor is launchable, and records the applied manifest.
// An unreachable manifest ends the cycle early in offline mode.
package engine
