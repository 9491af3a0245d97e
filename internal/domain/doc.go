// Package domain contains the core business entities of the group task backend:
// tasks, the per-user task relations, group memberships and user summaries.
//
// Entities validate themselves and know how to apply partial updates. Partial
// updates are expressed as patches built from Optional values, which keep track of
// whether a field was supplied at all and whether it was supplied as null.
package domain
