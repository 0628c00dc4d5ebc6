// Package httputil provides shared HTTP response helpers for handlers.
//
// Intake endpoints answer with a bare status and no body so that nothing
// about a failure leaks to the client; diagnostic endpoints use JSON.
package httputil
