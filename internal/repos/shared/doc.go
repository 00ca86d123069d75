// Package shared holds the repository value type and the collaborator
// interfaces used by discovery, catalog materialization, and the batch runner.
package shared
