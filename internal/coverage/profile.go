package coverage

import (
	"errors"
	"io"
	"math"
	"os"
	"path"
	"sort"

	"golang.org/x/tools/cover"

	"covrun/internal/domain"
)

// ParseProfile parses the cover profile at p.
func ParseProfile(p string) ([]*cover.Profile, error) {
	profiles, err := cover.ParseProfiles(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &domain.OpError{Op: "coverage.parse", Kind: domain.KindNotFound, Path: p, Err: domain.ErrNoProfile}
		}
		return nil, &domain.OpError{Op: "coverage.parse", Kind: domain.KindExecution, Path: p, Err: err}
	}
	return profiles, nil
}

// ParseProfileReader parses a cover profile from r.
func ParseProfileReader(r io.Reader) ([]*cover.Profile, error) {
	return cover.ParseProfilesFromReader(r)
}

// Summarize totals statements across profiles. Files and packages come out
// sorted by name.
func Summarize(profiles []*cover.Profile) domain.Summary {
	var s domain.Summary
	pkgs := make(map[string]*domain.PackageCoverage)

	for _, p := range profiles {
		if s.Mode == "" {
			s.Mode = p.Mode
		}
		fc := domain.FileCoverage{Name: p.FileName}
		for _, b := range p.Blocks {
			fc.Statements += b.NumStmt
			if b.Count > 0 {
				fc.Covered += b.NumStmt
			}
		}
		fc.Percent = percent(fc.Covered, fc.Statements)
		s.Files = append(s.Files, fc)

		importPath := path.Dir(p.FileName)
		pc, ok := pkgs[importPath]
		if !ok {
			pc = &domain.PackageCoverage{ImportPath: importPath}
			pkgs[importPath] = pc
		}
		pc.Statements += fc.Statements
		pc.Covered += fc.Covered

		s.Statements += fc.Statements
		s.Covered += fc.Covered
	}

	for _, pc := range pkgs {
		pc.Percent = percent(pc.Covered, pc.Statements)
		s.Packages = append(s.Packages, *pc)
	}
	sort.Slice(s.Files, func(i, j int) bool { return s.Files[i].Name < s.Files[j].Name })
	sort.Slice(s.Packages, func(i, j int) bool { return s.Packages[i].ImportPath < s.Packages[j].ImportPath })
	s.Percent = percent(s.Covered, s.Statements)
	return s
}

// BelowThreshold reports whether s misses failUnder. A threshold of zero
// or less disables the check.
func BelowThreshold(s domain.Summary, failUnder float64) bool {
	if failUnder <= 0 {
		return false
	}
	return s.Percent < failUnder
}

// percent rounds to one decimal place.
func percent(covered, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(covered)*1000/float64(total)) / 10
}
