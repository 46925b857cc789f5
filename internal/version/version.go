package version

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	semver "github.com/Masterminds/semver/v3"

	"scribble/internal/errors"
)

// knownReleases is the pool candidate compiler versions are drawn
// from, newest first.
var knownReleases = []string{
	"0.8.29", "0.8.28", "0.8.27", "0.8.26", "0.8.25", "0.8.24",
	"0.8.21", "0.8.19", "0.8.17", "0.8.13", "0.8.7", "0.8.0",
	"0.7.6", "0.7.0",
	"0.6.12", "0.6.0",
	"0.5.17",
	"0.4.26",
}

var pragmaRe = regexp.MustCompile(`pragma\s+solidity\s+([^;]+);`)

// DetectPragmas extracts every solidity version pragma from a source
// file.
func DetectPragmas(source string) []string {
	var out []string
	for _, m := range pragmaRe.FindAllStringSubmatch(source, -1) {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}

// Select resolves the compiler version for a run. A non-auto flag wins
// outright; otherwise the newest known release satisfying every file's
// pragmas is chosen. When no single release satisfies all files the
// run is ambiguous and the caller must pass --compiler-version.
func Select(flag string, perFile map[string][]string) (*semver.Version, error) {
	if flag != "" && flag != "auto" {
		v, err := semver.NewVersion(flag)
		if err != nil {
			return nil, fmt.Errorf("[%s] malformed --compiler-version %q: %v", errors.ErrorAmbiguousVersion, flag, err)
		}
		return v, nil
	}

	type fileConstraint struct {
		file string
		cons []*semver.Constraints
	}
	var all []fileConstraint
	files := make([]string, 0, len(perFile))
	for file := range perFile {
		files = append(files, file)
	}
	sort.Strings(files)
	for _, file := range files {
		fc := fileConstraint{file: file}
		for _, pragma := range perFile[file] {
			c, err := semver.NewConstraint(pragma)
			if err != nil {
				return nil, fmt.Errorf("[%s] %s: malformed version pragma %q: %v",
					errors.ErrorAmbiguousVersion, file, pragma, err)
			}
			fc.cons = append(fc.cons, c)
		}
		all = append(all, fc)
	}

	for _, release := range knownReleases {
		v := semver.MustParse(release)
		ok := true
		for _, fc := range all {
			for _, c := range fc.cons {
				if !c.Check(v) {
					ok = false
					break
				}
			}
			if !ok {
				break
			}
		}
		if ok {
			return v, nil
		}
	}

	var detected []string
	for _, fc := range all {
		for _, pragma := range perFile[fc.file] {
			detected = append(detected, fmt.Sprintf("%s: %s", fc.file, pragma))
		}
	}
	return nil, fmt.Errorf("[%s] no single compiler version satisfies all inputs; detected: %s (pass --compiler-version)",
		errors.ErrorAmbiguousVersion, strings.Join(detected, "; "))
}
