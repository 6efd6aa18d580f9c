package templify

import (
	"sync"

	"go.uber.org/zap"
)

// logOptions mirrors pongo2_options.go's package-level debug toggle, but
// backs it with a structured zap logger instead of a plain log.Logger
// since every log line here carries fields (sender, path, warning kind)
// rather than a single formatted sentence.
type logOptions struct {
	mu     sync.RWMutex
	debug  bool
	logger *zap.Logger
}

var nopLogger = zap.NewNop()

var pkgLog = &logOptions{logger: nopLogger}

// SetDebug toggles structured debug logging for Process/Validate calls
// package-wide, following pongo2_options.go's SetDebug(bool) shape.
func SetDebug(b bool) {
	pkgLog.mu.Lock()
	defer pkgLog.mu.Unlock()
	pkgLog.debug = b
	if b && pkgLog.logger == nopLogger {
		l, err := zap.NewDevelopment()
		if err == nil {
			pkgLog.logger = l
		}
	}
}

// SetLogger installs a caller-supplied zap.Logger (e.g. a production JSON
// logger wired to the host application's own sink) in place of templify's
// own default, following the convention of letting the host app own
// logger construction while the library only ever logs through it.
func SetLogger(l *zap.Logger) {
	pkgLog.mu.Lock()
	defer pkgLog.mu.Unlock()
	if l == nil {
		l = nopLogger
	}
	pkgLog.logger = l
}

func debugf(sender, msg string, fields ...zap.Field) {
	pkgLog.mu.RLock()
	defer pkgLog.mu.RUnlock()
	if !pkgLog.debug {
		return
	}
	pkgLog.logger.Debug(msg, append([]zap.Field{zap.String("sender", sender)}, fields...)...)
}
