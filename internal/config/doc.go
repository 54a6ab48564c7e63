// Package config manages launcher settings.
//
// User-level settings live at ~/.ombicraft/config.yaml and can be overridden
// through OMBICRAFT_* environment variables. Each installation root may also
// carry a launcher-config.json whose updateUrl takes precedence over the
// configured manifest URL.
package config
