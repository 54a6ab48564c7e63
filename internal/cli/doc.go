// Package cli defines the Cobra command tree for the launcher CLI. Each file
// registers one top-level command (sync, check, import, descriptor, config,
// version) with the root command. Commands delegate to internal packages and
// only handle flags, output formatting and exit status.
package cli
