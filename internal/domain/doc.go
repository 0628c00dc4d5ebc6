// Package domain defines the core business types for the newsletter intake service.
//
// Types in this package are value objects with no database dependencies and no
// HTTP concerns. They are the shared language between handlers, services, and
// repositories.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no http.Request, no context.Context in struct fields
//   - Validated values have unexported fields; Parse* is the only way to build one
//   - Parsing is pure: no I/O, no logging
package domain
