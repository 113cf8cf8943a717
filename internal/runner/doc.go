// Package runner delegates test execution to the Go toolchain.
//
// GoTest builds a `go test` command line with coverage instrumentation,
// runs it from the project directory and streams its output. The command's
// exit code is the result; covrun never reinterprets test output.
package runner
