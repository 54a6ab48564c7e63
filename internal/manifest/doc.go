// Package manifest handles the remote file manifest: fetching it with a
// cache-busting query, validating it against the embedded JSON Schema,
// normalizing entry paths, and persisting the client-manifest.json snapshot
// of the last applied manifest.
package manifest
