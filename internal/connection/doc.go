// Package connection implements the real-time transport to the honeypot
// backend.
//
// The package provides:
//   - Client: a single gorilla/websocket connection with keepalive pings
//   - Supervisor: owns at most one Client, reconnects after drops with a
//     bounded number of attempts, and gives up permanently at the cap
//   - StateFeed: fan-out of connection state transitions to watchers
//
// Messages are handed to a MessageHandler on one goroutine per connection,
// in receipt order. Nothing is queued or replayed across a reconnect.
package connection
