// Package coverrun orchestrates one covrun invocation: run the tests,
// render the report, summarise, record and publish.
//
// Only the delegated test command decides the exit code. Report, summary,
// history, metrics and publish failures are logged and never change it,
// except for the opt-in fail-under threshold.
package coverrun
