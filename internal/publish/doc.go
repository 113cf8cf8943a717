// Package publish sends run manifests to a remote `covrun serve` instance
// and reads its run history.
//
// HTTP API
//
//	POST /api/runs
//	    Store a Manifest. The server answers 201 on success.
//
//	GET /api/runs
//	    Return stored manifests, newest first.
//
// Any non-2xx status is an error naming the method, path and status.
package publish
