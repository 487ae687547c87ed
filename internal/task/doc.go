// Package task runs the background work around the profile registry: the
// periodic ProfileMutator and the one-shot bootstrap seeding performed at
// startup. Both go through service.ProfileService like any other caller.
package task
