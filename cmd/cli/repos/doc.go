// Package repos builds the cobra commands that run git across many
// repositories: clone, pull, exec, and the run selector.
package repos
