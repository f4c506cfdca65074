// Package cli constructs the repokeeper command-line interface. It wires the
// Cobra root command to the layered configuration loader and the zap loggers,
// then registers the repository commands from cmd/cli/repos.
package cli
