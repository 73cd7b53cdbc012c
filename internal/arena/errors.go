package arena

import "errors"

var (
	// ErrAlignTooLarge indicates an alignment request beyond what the arena
	// can guarantee.
	ErrAlignTooLarge = errors.New("arena: alignment too large")
)
