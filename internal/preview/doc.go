// Package preview turns a validated archive into a locally addressable
// document behind a preview:// handle.
//
// Handles live in an in-memory [Store] for the lifetime of the process and
// are released explicitly, or implicitly when the same project renders again.
// Nothing is fetched over the network to resolve a handle.
package preview
