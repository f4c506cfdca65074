package repos

import "github.com/spf13/cobra"

// commandBuilder is satisfied by every repository command builder.
type commandBuilder interface {
	Build() (*cobra.Command, error)
}

// CommandSetBuilder assembles every repository command from one set of settings.
type CommandSetBuilder struct {
	Settings CommandSettings
}

// Build constructs repo-list, repo-status, repo-origin-host, repo-release, repo-publish and repo-version-bump.
func (builder *CommandSetBuilder) Build() ([]*cobra.Command, error) {
	releaseSettings := ReleaseSettings{CommandSettings: builder.Settings}
	builders := []commandBuilder{
		&ListCommandBuilder{CommandSettings: builder.Settings},
		&StatusCommandBuilder{CommandSettings: builder.Settings},
		&OriginHostCommandBuilder{CommandSettings: builder.Settings},
		&ReleaseCommandBuilder{ReleaseSettings: releaseSettings},
		&PublishCommandBuilder{ReleaseSettings: releaseSettings},
		&VersionBumpCommandBuilder{ReleaseSettings: releaseSettings},
	}

	commands := make([]*cobra.Command, 0, len(builders))
	for _, commandBuilder := range builders {
		command, buildError := commandBuilder.Build()
		if buildError != nil {
			return nil, buildError
		}
		commands = append(commands, command)
	}
	return commands, nil
}
