// Package poller periodically samples the backend's threat status and
// system metrics.
//
// Each cycle fetches GET /status and GET /metrics concurrently, combines
// them into a Snapshot, hands it to the configured handler and keeps it as
// the latest sample. A failed cycle leaves the previous snapshot in place.
package poller
