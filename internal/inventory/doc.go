// Package inventory keeps the console's view of the backend's honeypots.
//
// The inventory caches raw honeypot records in backend order and recomputes
// display records on every read, so derived fields such as relative activity
// times never go stale. It syncs on start, reconciles on a timer and
// refreshes on demand when the event stream reports that the list changed.
//
// Every difference found by a sync is reported on the Changes channel.
package inventory
