//go:build tools

// Package tools pins the code generators run by go generate (mockgen) as module
// dependencies, so go.mod and go.sum track them.
package dmchat

import (
	_ "go.uber.org/mock/mockgen"
)
