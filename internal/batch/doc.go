// Package batch runs one git operation per repository and aggregates the
// outcomes. A failing repository is reported and counted but never stops the
// remaining repositories unless fail-fast dispatch is requested.
package batch
