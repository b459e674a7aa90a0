//go:build tools

// Package roomchat declares tool dependencies for this module.
//
// The blank import keeps mockgen, invoked through go generate, pinned in go.mod.
package roomchat

import (
	_ "go.uber.org/mock/mockgen"
)
