package dispose

import (
	"go.uber.org/zap"

	"github.com/joshuapare/refkit/ref"
)

// Logged wraps next so every disposal is recorded before it runs. A nil
// log means zap.NewNop; a nil next means Free.
func Logged(log *zap.Logger, next ref.Disposer) ref.Disposer {
	if log == nil {
		log = zap.NewNop()
	}
	if next == nil {
		next = Free
	}
	return &loggedStrategy{log: log, next: next}
}

type loggedStrategy struct {
	log  *zap.Logger
	next ref.Disposer
}

func (d *loggedStrategy) Dispose(b ref.Block) {
	d.log.Debug("disposing block",
		zap.Uint64("size", uint64(b.Size())),
		zap.Uint16("arena", uint16(b.Arena())))
	d.next.Dispose(b)
}
