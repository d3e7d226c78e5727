// Package api implements the HTTP REST API and WebSocket server for the earpanel.
//
// This package provides:
//   - REST endpoints for devices, scan, firmware, equalizer and controls
//   - WebSocket hub pushing session events to subscribed clients
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Architecture
//
// The server is a thin adapter over session.Controller. Every handler
// translates one request into one controller call and maps the returned
// error onto an HTTP status (see writeDomainError). The Hub is registered
// as a session sink, so clients see the same events as MQTT and the journal.
//
// # Graceful Degradation
//
// The journal endpoint is only routed when a journal store is supplied.
// Health reports each optional dependency (database, MQTT, InfluxDB) that
// was wired in.
package api
