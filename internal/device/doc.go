// Package device provides the device registry of an earpanel session.
//
// The registry is the set of paired wireless audio peripherals known to the
// panel: earbuds, phones and CMF speakers, each with up to three battery
// slots (left, right, case), capability flags and firmware metadata.
//
// # Architecture
//
//	┌───────────────────────────────────────────────────────────┐
//	│                      Device Registry                      │
//	│                                                           │
//	│  ┌──────────────────┐   ┌──────────────────┐              │
//	│  │     Catalog      │   │     Registry     │              │
//	│  │   (catalog.go)   │──▶│  (registry.go)   │              │
//	│  │                  │   │                  │              │
//	│  │ • YAML devices   │   │ • Ordered list   │              │
//	│  │ • Discoverable   │   │ • Connect/toggle │              │
//	│  │ • Built-in file  │   │ • Append (scan)  │              │
//	│  └──────────────────┘   └──────────────────┘              │
//	└───────────────────────────────────────────────────────────┘
//
// # Connection Invariant
//
// At most one device is connected at any observable instant. Connect
// replaces the active device under a single write lock: the target is
// connected and every other device disconnected in one step. Connecting
// the device that is already connected disconnects it.
//
// # Usage
//
//	catalog, err := device.LoadCatalog(path) // or device.DefaultCatalog()
//	if err != nil {
//	    return err
//	}
//	registry, err := device.NewRegistry(catalog.Devices)
//	if err != nil {
//	    return err
//	}
//	change, err := registry.Connect("2")
//
// # Thread Safety
//
// The Registry is safe for concurrent use. All operations are protected by
// a read-write mutex and every returned device is a deep copy.
package device
