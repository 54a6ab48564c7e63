// Package descriptor builds and repairs the launch descriptor of a mod-loader
// version. It fetches the loader profile and the base game descriptor, merges
// them into one self-contained document, and re-applies that merge on every
// update cycle so the descriptor converges on a launchable state.
package descriptor
