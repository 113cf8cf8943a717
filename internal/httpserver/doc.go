// Package httpserver serves the coverage report and run history.
//
// Routes
//
//	GET  /                 307 to /htmlcov/ (the report index)
//	GET  /htmlcov/...      static files from the report directory
//	GET  /api/runs         stored manifests, newest first
//	GET  /api/runs/{id}    one manifest, 404 if unknown
//	POST /api/runs         store a published manifest (201)
//	GET  /metrics          prometheus exposition
//
// Every request gets a request id (X-Request-ID, generated when absent) and
// an access log line.
package httpserver
