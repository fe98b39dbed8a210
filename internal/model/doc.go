// Package model defines the data types shared across the honeypot console.
//
// Raw records mirror the backend's JSON payloads (snake_case tags). Display
// records (Asset) are derived by the display package and use the camelCase
// field names the dashboard consumes.
//
// Conventions:
//   - Optional numeric fields are pointers; nil means "absent", not zero.
//   - Timestamps use Timestamp, which accepts RFC 3339 and zone-less ISO 8601.
package model
