// Package magetasks holds the build, lint and test tasks behind the qarun
// Magefile. Each task prints a header, runs the Go tool or a linter, and
// reports the outcome on Out.
package magetasks
