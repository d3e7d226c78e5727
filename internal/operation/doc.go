// Package operation implements the time-bounded simulated operations of a
// control session: the device scan and the per-device firmware update.
//
// An operation is a busy flag plus a scheduled completion. There is no
// partial progress; completion clears the flag in a single step. Every
// scheduled completion is wrapped in a *Handle so it can be cancelled,
// and a cancelled or superseded completion never mutates state.
//
// # Clocks
//
// Completions are scheduled through a Clock. SystemClock uses the runtime
// timers; ManualClock only fires when advanced, which makes timing tests
// deterministic:
//
//	clock := operation.NewManualClock(time.Unix(0, 0))
//	scan := operation.NewScan(clock, 3*time.Second)
//	_ = scan.Start(func() { fmt.Println("done") })
//	clock.Advance(3 * time.Second) // prints "done"
//
// # Thread Safety
//
// Scan and Firmware are not safe for concurrent use on their own. The session
// controller serialises every command and every completion under one lock,
// using Serialized to route completions through that lock.
package operation
