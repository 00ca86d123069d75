package batch

import (
	"fmt"
	"io"
	"strings"

	"github.com/temirov/multigit/internal/repos/shared"
)

const (
	summaryHeaderTemplateConstant           = "Summary: %d succeeded, %d skipped, %d failed, %d not run\n"
	summaryFailedRepositoryTemplateConstant = "  failed: %s\n"
)

// OutcomeStatus is the terminal state of a single repository.
type OutcomeStatus int

const (
	// OutcomeSucceeded reports a subprocess that exited successfully.
	OutcomeSucceeded OutcomeStatus = iota
	// OutcomeSkipped reports a repository left untouched.
	OutcomeSkipped
	// OutcomeFailed reports a repository whose operation failed.
	OutcomeFailed
	// OutcomeCancelled reports a repository that was never dispatched.
	OutcomeCancelled
)

func (status OutcomeStatus) String() string {
	switch status {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "cancelled"
	}
}

// SkipReason explains a skipped outcome.
type SkipReason string

const (
	// SkippedAlreadyExists marks a clone target that already holds a repository.
	SkippedAlreadyExists SkipReason = "already_exists"
	// SkippedNotARepository marks a pull or exec target without a repository marker.
	SkippedNotARepository SkipReason = "not_a_repository"
)

// Outcome records what happened to one repository.
type Outcome struct {
	Repository shared.Repository
	Status     OutcomeStatus
	SkipReason SkipReason
	Error      error
}

// Summary aggregates the outcomes of a batch in dispatch order.
type Summary struct {
	Outcomes []Outcome
}

// Count returns the number of outcomes with the provided status.
func (summary Summary) Count(status OutcomeStatus) int {
	count := 0
	for _, outcome := range summary.Outcomes {
		if outcome.Status == status {
			count++
		}
	}
	return count
}

// FailedRepositories lists the identities of failed repositories.
func (summary Summary) FailedRepositories() []string {
	var identities []string
	for _, outcome := range summary.Outcomes {
		if outcome.Status == OutcomeFailed {
			identities = append(identities, outcome.Repository.Identity())
		}
	}
	return identities
}

// Render writes the end-of-run report.
func (summary Summary) Render(writer io.Writer) {
	if writer == nil {
		return
	}
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(summaryHeaderTemplateConstant,
		summary.Count(OutcomeSucceeded),
		summary.Count(OutcomeSkipped),
		summary.Count(OutcomeFailed),
		summary.Count(OutcomeCancelled),
	))
	for _, identity := range summary.FailedRepositories() {
		builder.WriteString(fmt.Sprintf(summaryFailedRepositoryTemplateConstant, identity))
	}
	io.WriteString(writer, builder.String())
}
