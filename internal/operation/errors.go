package operation

import (
	"errors"
	"fmt"
)

// Domain errors for the operation package.
//
// Both in-progress errors wrap ErrBusy, so callers that only care about the
// kind can check:
//
//	if errors.Is(err, operation.ErrBusy) {
//	    // reject duplicate start
//	}
var (
	// ErrBusy is the kind shared by every duplicate-start rejection.
	ErrBusy = errors.New("operation: busy")

	// ErrScanInProgress is returned by Scan.Start while a scan is pending.
	ErrScanInProgress = fmt.Errorf("scan in progress: %w", ErrBusy)

	// ErrUpdateInProgress is returned by Firmware.Start while the same device is updating.
	ErrUpdateInProgress = fmt.Errorf("firmware update in progress: %w", ErrBusy)
)
