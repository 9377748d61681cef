// Package server exposes rendered previews to real browsers.
//
// Preview handles resolve in-process; the tiny HTTP server here exists only
// so a system browser can load a running preview at /preview/{id}. It serves
// from the in-memory preview store and never touches the network itself.
package server
