// Package extension defines the logger plugin contract and the registry that
// resolves a logger identity to a constructible plugin. Identities are
// absolute URIs compared case-insensitively. The registry is a pure catalog:
// resolving never constructs or initializes anything.
package extension
