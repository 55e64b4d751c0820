package ffi

/*
#cgo pkg-config: libpostal
#include <stdlib.h>
#include <libpostal/libpostal.h>
*/
import "C"

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/postalkit/postalkit/internal/data"
	"github.com/postalkit/postalkit/pkg/errors"
)

// The gate's terminal state. setupOnce guards the single transition and
// orders setupErr reads for callers that went through Initialize. setupDone
// is atomic because Initialized and Teardown may be called from goroutines
// that never entered the once.
var (
	setupOnce sync.Once
	setupErr  error
	setupDone atomic.Bool
)

// Initialize runs native setup exactly once per process. Every caller
// after the first observes the same terminal outcome without the native
// library being touched again. A nil manager uses default data resolution.
func Initialize(manager *data.Manager) error {
	setupOnce.Do(func() {
		setupErr = setup(manager)
		setupDone.Store(setupErr == nil)
	})
	return setupErr
}

// Initialized reports whether the gate reached its success state.
func Initialized() bool {
	return setupDone.Load()
}

// ensureInitialized lets adapter calls trigger setup on first use.
func ensureInitialized() error {
	return Initialize(nil)
}

// setup binds libpostal to the resolved data directory. All three native
// subsystems (normalization, parser, language classifier) must accept the
// directory; any single rejection fails the whole initialization. When the
// data directory is not available the library-default search paths are
// tried instead, which covers system-wide installs.
func setup(manager *data.Manager) error {
	if manager == nil {
		manager = data.NewManager()
	}

	if manager.IsDataAvailable() {
		dir := manager.DataDir()
		cDir := C.CString(dir)
		defer C.free(unsafe.Pointer(cDir))

		ok := bool(C.libpostal_setup_datadir(cDir)) &&
			bool(C.libpostal_setup_parser_datadir(cDir)) &&
			bool(C.libpostal_setup_language_classifier_datadir(cDir))
		if !ok {
			return errors.New(errors.ErrCodeInitRejected,
				truncateMessage("native setup rejected available data directory: "+dir)).
				WithComponent("ffi").WithOperation("setup")
		}
		return nil
	}

	ok := bool(C.libpostal_setup()) &&
		bool(C.libpostal_setup_parser()) &&
		bool(C.libpostal_setup_language_classifier())
	if !ok {
		return errors.New(errors.ErrCodeInitFailed,
			truncateMessage("model data missing from "+manager.DataDir()+
				" and library-default setup failed")).
			WithComponent("ffi").WithOperation("setup")
	}
	return nil
}

// Teardown releases the native library's global state. Call at process
// exit only; parse and expand calls after Teardown are undefined. Safe to
// call when initialization never succeeded.
func Teardown() {
	if !setupDone.Load() {
		return
	}
	C.libpostal_teardown()
	C.libpostal_teardown_parser()
	C.libpostal_teardown_language_classifier()
}
