// Package tag exposes build tags as constants, so tagged code can be
// guarded by plain if statements and compiled out in other builds.
package tag
