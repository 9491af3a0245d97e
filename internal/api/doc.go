// Package api exposes the group task endpoints over HTTP. Handlers decode and
// validate requests, call the task service with the authenticated caller, and
// map results and errors to JSON responses with safe messages.
package api
