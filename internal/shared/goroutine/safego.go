// Package goroutine provides utilities for safely launching goroutines with panic recovery.
package goroutine

import (
	"fmt"
	"runtime/debug"

	"curriculum/internal/shared/logger"
)

// SafeGo launches a goroutine with panic recovery. If the goroutine panics,
// the panic is caught and logged with stack trace instead of crashing the process.
func SafeGo(log logger.Interface, name string, fn func()) {
	go func() {
		defer Recover(log, name, nil)
		fn()
	}()
}

// Recover is meant to be deferred. It logs a recovered panic and, when errp
// is non-nil, turns it into an error so a worker reports failure instead of
// crashing the batch.
func Recover(log logger.Interface, name string, errp *error) {
	r := recover()
	if r == nil {
		return
	}
	log.Errorw("goroutine panicked",
		"goroutine", name,
		"panic", fmt.Sprintf("%v", r),
		"stack", string(debug.Stack()),
	)
	if errp != nil {
		*errp = fmt.Errorf("%s panicked: %v", name, r)
	}
}
