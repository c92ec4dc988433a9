// Package server exposes a Store over HTTP.
//
// Routes:
//
//	POST   /strings                               create a record
//	GET    /strings                               list with filters
//	GET    /strings/filter-by-natural-language    list with a parsed phrase query
//	GET    /strings/{value...}                    fetch one record
//	DELETE /strings/{value...}                    delete one record
//	GET    /healthz                               liveness and record count
//
// Every error response has the body {"detail": "..."}.
package server
