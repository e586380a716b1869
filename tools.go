//go:build tools
// +build tools

// Package tools declares tool dependencies for this module.
//
// mockgen is only invoked through `go generate`; importing it here keeps
// go.mod / go.sum in sync so a fresh checkout can regenerate mocks/.
package dm_lab

import (
	_ "go.uber.org/mock/mockgen"
)
