// Package live runs a form state behind a message protocol so a browser can
// validate as the user types. Each Event mutates the state and yields a
// Message describing the errors to show, the title and the submit status. The
// package does not know about websockets; internal/server carries the
// messages with wsjson.
package live
