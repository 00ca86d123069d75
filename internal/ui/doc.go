// Package ui renders command lifecycle events as console lines for people
// watching a batch run.
package ui
