// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// Load reads and expands a file, LoadWithDefaults fills unset fields, and
// LoadAndValidate additionally rejects inconsistent values.
package config
