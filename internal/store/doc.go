// Package store holds the process-wide profile registry: the single piece of
// shared mutable state in the application. All mutations run as serialized
// read-modify-write transactions; readers get immutable point-in-time copies.
// Nothing is persisted.
package store
