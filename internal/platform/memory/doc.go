// Package memory provides an in-process implementation of
// store.DocumentStore. It backs the "memory" database driver used for local
// development and is the store of choice in service tests.
package memory
