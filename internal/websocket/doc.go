// Package websocket pushes dataset notifications to open dashboards.
//
// A Hub fans out messages to every registered Client. Each client has a
// read pump that only watches for disconnects and heartbeats, and a write
// pump that forwards queued messages and keeps the connection alive with
// pings. Clients that cannot keep up are disconnected rather than slowing
// the hub down.
//
// Messages use the envelope in pkg/contracts/events. The dashboard service
// broadcasts dataset:refreshed after a successful refresh and dataset:failed
// when the reload fails, so pages can re-query the API.
package websocket
