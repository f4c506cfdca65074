package repos

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/repokeeper/internal/repos/shared"
	flagutils "github.com/temirov/repokeeper/internal/utils/flags"
)

const (
	listUseConstant              = "repo-list [root ...]"
	listShortDescriptionConstant = "List git repositories found under the roots"
	listLongDescriptionConstant  = "repo-list walks every root, skipping symbolic links and excluded folders such as node_modules, and prints the path of each git working copy."
)

// ListCommandBuilder assembles the repo-list command.
type ListCommandBuilder struct {
	CommandSettings
	Discoverer shared.RepositoryDiscoverer
}

// Build constructs the repo-list command.
func (builder *ListCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   listUseConstant,
		Short: listShortDescriptionConstant,
		Long:  listLongDescriptionConstant,
	}
	rootFlag := flagutils.BindRootFlag(command)
	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, *rootFlag, arguments)
	}
	return command, nil
}

func (builder *ListCommandBuilder) run(command *cobra.Command, flagRoots []string, arguments []string) error {
	configuration := builder.configuration()
	roots, rootsError := requireRepositoryRoots(command, flagRoots, arguments, configuration.List.RepositoryRoots)
	if rootsError != nil {
		return rootsError
	}

	repositories, discoveryError := builder.discoverRepositories(builder.Discoverer, roots)
	if discoveryError != nil {
		return discoveryError
	}

	for _, repository := range repositories {
		fmt.Fprintln(command.OutOrStdout(), repository)
	}
	return nil
}
