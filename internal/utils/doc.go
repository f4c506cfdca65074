// Package utils holds the configuration loader, the logger factory and the
// small I/O helpers shared by the repokeeper commands.
package utils
