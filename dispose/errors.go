package dispose

import "errors"

// ErrClosed reports a Close of an already-closed Background strategy.
var ErrClosed = errors.New("dispose: background strategy already closed")
