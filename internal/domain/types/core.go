package types

// RunID identifies a single covrun invocation.
type RunID string

// String returns the string form of the run id.
func (id RunID) String() string { return string(id) }

// CoverMode is the go test -covermode value.
type CoverMode string

const (
	CoverSet    CoverMode = "set"
	CoverCount  CoverMode = "count"
	CoverAtomic CoverMode = "atomic"
)

// Valid reports whether m is one of the modes go test accepts.
func (m CoverMode) Valid() bool {
	switch m {
	case CoverSet, CoverCount, CoverAtomic:
		return true
	}
	return false
}

// ReportDir and ReportIndex give the fixed location of the HTML report,
// relative to the project directory. ReportMetrics sits next to it.
const (
	ReportDir     = "htmlcov"
	ReportIndex   = "index.html"
	ReportMetrics = "metrics.prom"
)
