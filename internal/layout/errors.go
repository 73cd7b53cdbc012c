package layout

import "errors"

var (
	// ErrPointerful indicates a payload type that contains Go pointers and
	// therefore cannot live in untraced block storage.
	ErrPointerful = errors.New("layout: payload type contains pointers")

	// ErrTooLarge indicates a slice layout whose element storage would
	// overflow the address space.
	ErrTooLarge = errors.New("layout: slice payload too large")
)
