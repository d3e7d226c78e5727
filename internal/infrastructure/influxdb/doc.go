// Package influxdb writes panel telemetry to InfluxDB v2.
//
// Battery readings are stored in the "battery" measurement tagged by
// device_id and slot; every session event is counted in "session_events".
// Writes are non-blocking and batched; failures surface through SetOnError.
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // telemetry off
//	}
//	defer client.Close()
//	client.WriteBatteryLevel("1", "left", 85, time.Now())
package influxdb
