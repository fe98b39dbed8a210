// Package api is the REST client for the honeypot backend.
//
// All endpoints live under a versioned base path, by default
// http://localhost:8000/api/v1. Requests and responses are JSON. A non-2xx
// response surfaces as *APIError carrying the status code and status text;
// the body is kept verbatim but never parsed.
//
// Reads (GET) are retried on 5xx and 429 with jittered exponential backoff.
// Mutating calls are sent exactly once.
package api
