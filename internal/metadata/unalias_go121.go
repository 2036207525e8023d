//go:build !go1.22

package metadata

import "go/types"

// unalias is the identity before Go 1.22: the type checker resolves aliases
// eagerly, so *types.Alias values never appear and types.Unalias would be a
// no-op anyway.
func unalias(t types.Type) types.Type { return t }
