// Package errors defines the failure classes shared by multigit commands.
//
// Only ArgumentError and InvalidCatalogError end a run before any repository
// is processed. DiscoveryIOError and OperationError are contained to a single
// directory subtree or repository and surface through logs and the batch
// summary.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

const (
	argumentErrorTemplateConstant           = "%s: %s"
	argumentErrorWithCauseTemplateConstant  = "%s: %s: %v"
	invalidCatalogTemplateConstant          = "invalid catalog %s: %s"
	invalidCatalogWithCauseTemplateConstant = "invalid catalog %s: %s: %v"
	discoveryIOErrorTemplateConstant        = "unable to read directory %s: %v"
	operationErrorTemplateConstant          = "%s %s failed: %v"
	operationMessageTemplateConstant        = "Error processing %s: %v\n"
	unknownCatalogPathLabelConstant         = "document"
	malformedArgumentLabelConstant          = "malformed arguments"
	missingArgumentLabelConstant            = "missing required arguments"
	invalidDirectoryLabelConstant           = "invalid directory"
)

// ErrBatchFailed marks a batch in which at least one repository operation failed.
var ErrBatchFailed = errors.New("one or more repository operations failed")

// ArgumentKind classifies command-line input failures.
type ArgumentKind int

const (
	// ArgumentMalformed reports unparsable flags or values outside an allowed set.
	ArgumentMalformed ArgumentKind = iota
	// ArgumentMissing reports a required flag or positional argument that was not supplied.
	ArgumentMissing
	// ArgumentInvalidDirectory reports a directory argument that does not name a directory.
	ArgumentInvalidDirectory
)

func (kind ArgumentKind) String() string {
	switch kind {
	case ArgumentMissing:
		return missingArgumentLabelConstant
	case ArgumentInvalidDirectory:
		return invalidDirectoryLabelConstant
	default:
		return malformedArgumentLabelConstant
	}
}

// ArgumentError describes malformed or missing command-line input.
type ArgumentError struct {
	Kind   ArgumentKind
	Detail string
	Cause  error
}

// NewArgumentError constructs an ArgumentError of the provided kind.
func NewArgumentError(kind ArgumentKind, detail string, cause error) ArgumentError {
	return ArgumentError{Kind: kind, Detail: strings.TrimSpace(detail), Cause: cause}
}

func (argumentError ArgumentError) Error() string {
	if argumentError.Cause != nil {
		return fmt.Sprintf(argumentErrorWithCauseTemplateConstant, argumentError.Kind, argumentError.Detail, argumentError.Cause)
	}
	return fmt.Sprintf(argumentErrorTemplateConstant, argumentError.Kind, argumentError.Detail)
}

// Unwrap exposes the underlying cause.
func (argumentError ArgumentError) Unwrap() error {
	return argumentError.Cause
}

// InvalidCatalogError reports a catalog document that cannot be used.
type InvalidCatalogError struct {
	Path   string
	Reason string
	Cause  error
}

func (catalogError InvalidCatalogError) Error() string {
	path := catalogError.Path
	if len(strings.TrimSpace(path)) == 0 {
		path = unknownCatalogPathLabelConstant
	}
	if catalogError.Cause != nil {
		return fmt.Sprintf(invalidCatalogWithCauseTemplateConstant, path, catalogError.Reason, catalogError.Cause)
	}
	return fmt.Sprintf(invalidCatalogTemplateConstant, path, catalogError.Reason)
}

// Unwrap exposes the underlying cause.
func (catalogError InvalidCatalogError) Unwrap() error {
	return catalogError.Cause
}

// DiscoveryIOError reports a directory that could not be listed while scanning.
type DiscoveryIOError struct {
	Directory string
	Cause     error
}

func (discoveryError DiscoveryIOError) Error() string {
	return fmt.Sprintf(discoveryIOErrorTemplateConstant, discoveryError.Directory, discoveryError.Cause)
}

// Unwrap exposes the underlying cause.
func (discoveryError DiscoveryIOError) Unwrap() error {
	return discoveryError.Cause
}

// OperationError describes a failed operation against a single repository.
type OperationError struct {
	Operation  string
	Repository string
	Cause      error
}

func (operationError OperationError) Error() string {
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Repository, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// Message renders the console line reported for the failed repository.
func (operationError OperationError) Message() string {
	return fmt.Sprintf(operationMessageTemplateConstant, operationError.Repository, operationError.Cause)
}
