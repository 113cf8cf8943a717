package types

// FileCoverage is the statement coverage of one source file.
type FileCoverage struct {
	Name       string  `json:"name"`
	Statements int     `json:"statements"`
	Covered    int     `json:"covered"`
	Percent    float64 `json:"percent"`
}

// PackageCoverage aggregates the files of one package.
type PackageCoverage struct {
	ImportPath string  `json:"import_path"`
	Statements int     `json:"statements"`
	Covered    int     `json:"covered"`
	Percent    float64 `json:"percent"`
}

// Summary is the aggregate statement coverage of a profile.
type Summary struct {
	Mode       string            `json:"mode"`
	Statements int               `json:"statements"`
	Covered    int               `json:"covered"`
	Percent    float64           `json:"percent"`
	Packages   []PackageCoverage `json:"packages,omitempty"`
	Files      []FileCoverage    `json:"files,omitempty"`
}
