// Package gitrepo reads and rewrites the origin entry of a repository's
// .git/config as plain text, and parses ssh remote URLs for reporting.
package gitrepo
