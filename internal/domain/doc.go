// Package domain holds the core entities of the list manager: mailing
// lists, members and their delivery status, bounce-tracking state, and the
// message/metadata pair that flows through processing pipelines.
//
// Types here carry no behavior beyond simple accessors; all business logic
// lives in the service packages (pending, bounce, pipeline).
package domain
