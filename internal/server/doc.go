// Package server exposes the console's local HTTP API.
//
// Routes:
//
//	GET /health           connection, inventory and journal health
//	GET /api/assets       display records in backend order
//	GET /api/assets/:id   one display record
//	GET /api/status       latest threat status snapshot
//	GET /api/events       recent journal records (?limit=N)
//	GET /api/version      build information
//	GET /ws               live relay of every stream envelope
package server
