// Package api handles incoming HTTP requests for the profile service:
// request decoding and validation, calling service.ProfileService, and
// mapping results and error kinds to HTTP responses.
package api
