//go:build !mobile

// Package mobile is the ebitenmobile binding entry point. Without the mobile
// build tag it is empty.
package mobile

// Dummy is exported so that the package builds without the mobile tag.
func Dummy() {}
