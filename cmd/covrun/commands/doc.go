// Package commands defines the covrun CLI and wires dependencies for subcommands.
//
// Commands
//
//   - (none)     Same as run
//   - run        Run the tests with coverage and write htmlcov/index.html
//   - report     Re-render htmlcov/index.html from the last profile
//   - history    List recorded runs, locally or from a report server
//   - serve      Serve the report, run history and metrics over HTTP
//   - version    Print build information
//
// # Implementation
//
// The root command resolves the project directory, loads .covrun.yaml and
// builds the logger before any subcommand runs. Subcommands overlay their
// flags on the loaded settings and then wire the app, so flags such as
// --publish reach the dependency graph.
//
// The process exit code is the delegated go test command's exit code.
package commands
