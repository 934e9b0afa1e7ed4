// Package store defines interfaces for data persistence operations.
// Resources are kept as JSON documents in named collections; a
// DocumentStore is a typed handle on one collection. Implementations live
// under internal/platform.
package store
