// Package api exposes the account, task and comment operations over HTTP.
// Handlers decode and validate JSON requests, call the services, and map
// service errors onto status codes and client-safe messages.
package api
