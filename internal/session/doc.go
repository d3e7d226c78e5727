// Package session owns the state of one control-panel session.
//
// A Controller holds the device registry, the scan and firmware operations,
// the equalizer, the per-device listening settings and the user
// preferences. Every read and every mutation goes through its methods.
//
// # Concurrency
//
// The controller has a single mutex. Commands take it for their whole
// duration, and so do operation completions: the controller hands the
// operations a clock whose callbacks acquire the same lock before running.
// A completion therefore never interleaves with a command, and readers see
// the scan flag and the appended devices change together.
//
// Commands queue events while holding the lock. The queue is flushed to the
// registered sinks after the lock is released, in the order the events were
// produced. Sinks must not call Controller methods from HandleEvent.
//
// # Usage
//
//	ctrl := session.NewController(registry, session.Options{
//	    Clock:            operation.SystemClock{},
//	    ScanDuration:     3 * time.Second,
//	    FirmwareDuration: 5 * time.Second,
//	    Discoverable:     catalog.Discoverable,
//	})
//	defer ctrl.Close()
//	ctrl.AddSink(hub)
//	_, err := ctrl.Connect("2")
package session
