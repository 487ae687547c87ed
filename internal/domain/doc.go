// Package domain contains the core business entities, value objects, and
// domain logic of the application. A Profile is a named set of string
// parameters; this package knows how to validate, copy and interpret one,
// independent of how profiles are stored or served.
package domain
