// Package catalog loads the repository catalog document and turns it into
// repositories rooted under a working directory.
package catalog
