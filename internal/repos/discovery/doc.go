// Package discovery finds git working copies below a directory.
//
// Scanning stops descending as soon as a directory contains a .git marker
// directory, so submodules and other nested repositories are never reported
// as independent roots. Symbolic links to directories are not followed.
package discovery
