package execshell

import (
	"fmt"
	"strings"
)

const (
	startedMessageTemplateConstant            = "%s in %s"
	succeededMessageTemplateConstant          = "%s in %s"
	failedMessageTemplateConstant             = "Failed to %s in %s (exit code %d%s)"
	executionFailedMessageTemplateConstant    = "Unable to %s in %s: %s"
	standardErrorSuffixTemplateConstant       = ": %s"
	defaultWorkingDirectoryLabelConstant      = "current directory"
	unknownFailureMessageConstant             = "unknown error"
	unknownArgumentLabelConstant              = "unknown"
	argumentsJoinSeparatorConstant            = " "
	gitStatusSubcommandNameConstant           = "status"
	gitAddSubcommandNameConstant              = "add"
	gitCommitSubcommandNameConstant           = "commit"
	gitPushSubcommandNameConstant             = "push"
	gitMessageFlagConstant                    = "-m"
	gitConfigurationFlagConstant              = "-c"
	optionPrefixConstant                      = "-"
	packagePublishSubcommandNameConstant      = "publish"
	packageGlobalSubcommandNameConstant       = "global"
	packageGlobalRemoveSubcommandNameConstant = "remove"
	packageGlobalAddSubcommandNameConstant    = "add"
)

// commandPhrases holds the verb forms used to narrate one command.
type commandPhrases struct {
	progressive string
	past        string
	infinitive  string
}

// CommandMessageFormatter builds human-readable lifecycle messages for shell commands.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	phrases := formatter.describe(command)
	return fmt.Sprintf(startedMessageTemplateConstant, phrases.progressive, formatter.workingDirectoryLabel(command))
}

// BuildSuccessMessage describes a command that exited with status zero.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	phrases := formatter.describe(command)
	return fmt.Sprintf(succeededMessageTemplateConstant, phrases.past, formatter.workingDirectoryLabel(command))
}

// BuildFailureMessage describes a command that exited with a non-zero status.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	phrases := formatter.describe(command)
	standardErrorSuffix := ""
	if trimmedStandardError := strings.TrimSpace(result.StandardError); len(trimmedStandardError) > 0 {
		standardErrorSuffix = fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
	}
	return fmt.Sprintf(failedMessageTemplateConstant, phrases.infinitive, formatter.workingDirectoryLabel(command), result.ExitCode, standardErrorSuffix)
}

// BuildExecutionFailureMessage describes a command that could not be run at all.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	phrases := formatter.describe(command)
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(executionFailedMessageTemplateConstant, phrases.infinitive, formatter.workingDirectoryLabel(command), failureMessage)
}

func (formatter CommandMessageFormatter) workingDirectoryLabel(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describe(command ShellCommand) commandPhrases {
	arguments := command.Details.Arguments
	switch command.Name {
	case CommandGit:
		return formatter.describeGit(stripGitConfiguration(arguments), command)
	case CommandSudo:
		if len(arguments) > 0 {
			return formatter.describe(ShellCommand{Name: CommandName(arguments[0]), Details: CommandDetails{Arguments: arguments[1:]}})
		}
	default:
		if len(arguments) > 0 && arguments[0] == packagePublishSubcommandNameConstant {
			return commandPhrases{progressive: "Publishing package", past: "Published package", infinitive: "publish package"}
		}
		if len(arguments) > 2 && arguments[0] == packageGlobalSubcommandNameConstant {
			packageName := arguments[2]
			switch arguments[1] {
			case packageGlobalRemoveSubcommandNameConstant:
				return commandPhrases{
					progressive: "Removing global package " + packageName,
					past:        "Removed global package " + packageName,
					infinitive:  "remove global package " + packageName,
				}
			case packageGlobalAddSubcommandNameConstant:
				return commandPhrases{
					progressive: "Installing global package " + packageName,
					past:        "Installed global package " + packageName,
					infinitive:  "install global package " + packageName,
				}
			}
		}
	}
	return genericPhrases(command)
}

func (formatter CommandMessageFormatter) describeGit(arguments []string, command ShellCommand) commandPhrases {
	if len(arguments) == 0 {
		return genericPhrases(command)
	}
	switch arguments[0] {
	case gitStatusSubcommandNameConstant:
		return commandPhrases{progressive: "Reviewing working tree status", past: "Reviewed working tree status", infinitive: "review working tree status"}
	case gitAddSubcommandNameConstant:
		return commandPhrases{progressive: "Staging all changes", past: "Staged all changes", infinitive: "stage changes"}
	case gitCommitSubcommandNameConstant:
		commitMessage := argumentAfter(arguments, gitMessageFlagConstant)
		return commandPhrases{
			progressive: fmt.Sprintf("Committing %q", commitMessage),
			past:        fmt.Sprintf("Committed %q", commitMessage),
			infinitive:  fmt.Sprintf("commit %q", commitMessage),
		}
	case gitPushSubcommandNameConstant:
		positional := positionalArguments(arguments[1:])
		remoteName, branchName := unknownArgumentLabelConstant, unknownArgumentLabelConstant
		if len(positional) > 0 {
			remoteName = positional[0]
		}
		if len(positional) > 1 {
			branchName = positional[1]
		}
		return commandPhrases{
			progressive: fmt.Sprintf("Pushing %s to %s", branchName, remoteName),
			past:        fmt.Sprintf("Pushed %s to %s", branchName, remoteName),
			infinitive:  fmt.Sprintf("push %s to %s", branchName, remoteName),
		}
	}
	return genericPhrases(command)
}

func genericPhrases(command ShellCommand) commandPhrases {
	label := command.Label()
	return commandPhrases{progressive: "Running " + label, past: "Completed " + label, infinitive: "run " + label}
}

func stripGitConfiguration(arguments []string) []string {
	remaining := arguments
	for len(remaining) > 1 && remaining[0] == gitConfigurationFlagConstant {
		remaining = remaining[2:]
	}
	return remaining
}

func argumentAfter(arguments []string, flag string) string {
	for argumentIndex := 0; argumentIndex < len(arguments)-1; argumentIndex++ {
		if arguments[argumentIndex] == flag {
			return arguments[argumentIndex+1]
		}
	}
	return unknownArgumentLabelConstant
}

func positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		if strings.HasPrefix(argument, optionPrefixConstant) {
			continue
		}
		positional = append(positional, argument)
	}
	return positional
}
