// Package pipeline implements the message-processing engine: named,
// immutable, ordered chains of handlers that each inspect or mutate a
// message and its metadata and return a tagged outcome. Continue moves to
// the next handler; Discard drops the message silently (audited); Reject
// drops it and re-routes the pristine original onto the administrative
// queue so a rejection notice can reach the sender. Any error a handler
// returns is a genuine fault and propagates to the caller so the message
// stays queued for inspection.
package pipeline
