package batch

import (
	"fmt"
	"strings"

	repoerrors "github.com/temirov/multigit/internal/repos/errors"
)

const unknownSelectorTemplateConstant = "unsupported command %q (expected one of %s)"

// Command identifies an operation the runner can dispatch.
type Command string

const (
	// CommandClone clones catalog repositories that are not present yet.
	CommandClone Command = "clone"
	// CommandPull pulls repositories that already exist.
	CommandPull Command = "pull"
	// CommandExec runs arbitrary git arguments inside existing repositories.
	CommandExec Command = "exec"
)

// Commands lists every command the runner must be able to dispatch.
func Commands() []Command {
	return []Command{CommandClone, CommandPull, CommandExec}
}

// SelectorCommands lists the commands accepted by the positional selector.
func SelectorCommands() []Command {
	return []Command{CommandClone, CommandPull}
}

// ParseSelector resolves a positional selector to a catalog command.
func ParseSelector(value string) (Command, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	selectorNames := make([]string, 0, len(SelectorCommands()))
	for _, command := range SelectorCommands() {
		if string(command) == normalizedValue {
			return command, nil
		}
		selectorNames = append(selectorNames, string(command))
	}
	detail := fmt.Sprintf(unknownSelectorTemplateConstant, value, strings.Join(selectorNames, ", "))
	return "", repoerrors.NewArgumentError(repoerrors.ArgumentMalformed, detail, nil)
}

func (command Command) String() string {
	return string(command)
}
