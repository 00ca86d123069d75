// Package cli builds the multigit command tree. It layers embedded defaults,
// config.yaml, MULTIGIT_* environment variables and persistent flags into one
// configuration, constructs the zap logger, and maps command errors to
// process exit codes.
package cli
