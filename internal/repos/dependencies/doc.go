// Package dependencies supplies default collaborators for repository commands when callers leave them unset.
package dependencies
