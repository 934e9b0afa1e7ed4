// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, files). It provides type-safe
// access to application settings needed by different components while keeping
// configuration details separate from business logic.
//
// Besides the typed Config, the package exposes a Provider over the raw keys.
// Components that decide at runtime whether they can start (log transports)
// read their settings through it with explicit defaults.
package config
