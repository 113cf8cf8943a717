// Package main runs covrund, a standalone report server for one project or a
// shared directory of published runs.
//
// HTTP API
//
//	GET /
//	    Redirect to /htmlcov/.
//
//	GET /htmlcov/...
//	    Serve the HTML coverage report written by covrun.
//
//	GET /api/runs
//	    Return every recorded run manifest, newest first.
//
//	POST /api/runs
//	    Store a run manifest published with covrun run --publish. A manifest
//	    without an id is rejected with 400.
//
//	GET /api/runs/{id}
//	    Return one manifest, or 404.
//
//	GET /metrics
//	    Prometheus metrics for the last published run.
//
// Behaviour
//
//   - Manifests are JSON files under <dir>/.covrun/runs and survive restarts.
//   - Non-2xx responses carry {"error": "...", "request_id": "..."}.
//   - Every request is logged with its X-Request-ID, status, bytes and
//     duration.
//   - The default listen address is serve.addr from .covrun.yaml, or :8080.
//   - SIGINT and SIGTERM drain in-flight requests for serve.shutdown_timeout.
package main
