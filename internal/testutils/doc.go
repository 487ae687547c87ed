// Package testutils provides testing utilities for the profile API.
//
// This package contains helpers for:
//   - building test profiles with unique names
//   - wiring a registry-backed ProfileService for package tests
//   - running test servers and asserting error responses
//
// It is imported only from _test.go files.
package testutils
