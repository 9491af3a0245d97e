// Package service contains the application use cases. It orchestrates domain
// objects and the store interfaces from internal/store to serve the HTTP layer.
//
// Services:
//   - receive their stores through constructor injection and never depend on a
//     concrete database implementation
//   - check group membership before touching any task or relation data
//   - apply transactional boundaries when an operation spans several stores
//   - return sentinel errors for expected conditions and wrap everything else in
//     a service-specific error type, which the API layer maps to status codes
package service
