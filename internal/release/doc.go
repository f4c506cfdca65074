// Package release bumps manifest versions and runs the commit, push and publish
// commands of a repository release as an ordered pipeline of named steps.
package release
