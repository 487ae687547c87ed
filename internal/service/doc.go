// Package service contains the profile use cases.
//
// Every operation is a typed request routed through a Dispatcher:
//
//   - Commands (CreateProfileCommand, UpdateProfileCommand, DeleteProfileCommand)
//     each run exactly one registry transaction, so existence and uniqueness
//     checks happen in the same critical section as the write they guard.
//   - Queries (ListProfilesQuery, GetProfileQuery, ValidateParameterQuery)
//     read a registry snapshot and never block writers.
//
// ProfileService is the facade handed to delivery mechanisms (HTTP API,
// bootstrap seeding, background mutator). Errors are classified with KindOf.
package service
