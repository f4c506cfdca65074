// Package ui renders console feedback for repokeeper commands: lifecycle
// messages for executed shell commands and coloured release progress lines.
package ui
