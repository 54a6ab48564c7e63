// Package updater tells the user when a newer launcher build is published.
// It compares the launcher version declared in the update manifest with the
// running build and records the result in a small cache that powers the
// startup banner. Fetching and installing the new build is left to the user.
package updater
