// Package repository exposes the operations repokeeper performs on a single
// working copy: origin inspection and host rewrite, status reporting, version
// bump, push and publish.
package repository
