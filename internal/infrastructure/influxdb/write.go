package influxdb

import (
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementBattery = "battery"
	MeasurementEvents  = "session_events"
)

// WriteBatteryLevel records one battery slot reading, e.g. ("1", "left", 85).
func (c *Client) WriteBatteryLevel(deviceID, slot string, level int, timestamp time.Time) {
	c.write(influxdb2.NewPointWithMeasurement(MeasurementBattery).
		AddTag("device_id", deviceID).
		AddTag("slot", slot).
		AddField("level", level).
		SetTime(timestamp))
}

// WriteEvent counts one session event. deviceID is empty for panel-wide
// events such as scans and is then left untagged.
func (c *Client) WriteEvent(eventType, deviceID string, timestamp time.Time) {
	p := influxdb2.NewPointWithMeasurement(MeasurementEvents).AddTag("type", eventType)
	if deviceID != "" {
		p.AddTag("device_id", deviceID)
	}
	c.write(p.AddField("count", 1).SetTime(timestamp))
}

func (c *Client) write(p *write.Point) {
	if c.IsConnected() {
		c.writeAPI.WritePoint(p.SortTags())
	}
}
