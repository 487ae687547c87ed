// Package events provides a small in-process publish/subscribe mechanism for
// profile changes.
//
// Command handlers emit a ProfileEvent after each committed Create, Update or
// Delete. Handlers registered on the emitter (metrics, audit logging) react
// without the command handlers knowing about them.
package events
