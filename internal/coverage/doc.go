// Package coverage reads Go cover profiles and produces reports.
//
// Contents
//
//   - Profile parsing (ParseProfile, ParseProfileReader) on top of
//     golang.org/x/tools/cover, which merges duplicate blocks written by
//     multiple test binaries under -coverpkg
//   - Statement totals per file and per package (Summarize)
//   - The fail-under check (BelowThreshold)
//   - HTML rendering through `go tool cover -html` (HTMLRenderer)
package coverage
