// Package app wires application dependencies for the CLI.
//
// It builds the concrete runner, renderer, stores, metrics and publish
// client from Config, exposing them via the Wire struct for commands to use.
package app
