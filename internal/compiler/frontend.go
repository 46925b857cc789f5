package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"scribble/internal/errors"
	"scribble/internal/merge"
	"scribble/internal/solast"
)

// Frontend is the host-compiler oracle: it turns source text into a
// resolved AST forest. Compilation itself is outside the core; the
// pipeline only consumes the returned unit group.
type Frontend interface {
	// Compile compiles one input file (plus whatever it imports) and
	// returns the resulting unit group in a fresh id space, with the
	// file list in index order.
	Compile(path string, source string, version string, remappings []string) (*merge.UnitGroup, []string, error)
}

// standardJSON is the host compiler's standard-JSON output envelope.
type standardJSON struct {
	Errors []struct {
		Severity         string `json:"severity"`
		FormattedMessage string `json:"formattedMessage"`
	} `json:"errors"`
	Sources map[string]struct {
		ID  int             `json:"id"`
		AST json.RawMessage `json:"ast"`
	} `json:"sources"`
}

// DecodeStandardJSON converts a standard-JSON output document into a
// unit group, shared by the solc frontend and --input-mode json.
func DecodeStandardJSON(data []byte) (*merge.UnitGroup, []string, error) {
	var out standardJSON
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, nil, fmt.Errorf("[%s] malformed compiler output: %v", errors.ErrorHostCompile, err)
	}
	for _, e := range out.Errors {
		if e.Severity == "error" {
			return nil, nil, fmt.Errorf("[%s] %s", errors.ErrorHostCompile, strings.TrimSpace(e.FormattedMessage))
		}
	}
	if len(out.Sources) == 0 {
		return nil, nil, fmt.Errorf("[%s] compiler output contains no sources", errors.ErrorHostCompile)
	}

	// File order follows the compiler-assigned source indices.
	type entry struct {
		path string
		id   int
		ast  json.RawMessage
	}
	var entries []entry
	for path, src := range out.Sources {
		entries = append(entries, entry{path: path, id: src.ID, ast: src.AST})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	decoder := NewDecoder()
	var units []solast.ID
	var files []string
	for _, e := range entries {
		unit, err := decoder.DecodeUnit(e.ast)
		if err != nil {
			return nil, nil, fmt.Errorf("[%s] %s: %v", errors.ErrorHostCompile, e.path, err)
		}
		units = append(units, unit)
		files = append(files, e.path)
	}
	decoder.Finish()

	return &merge.UnitGroup{Ctx: decoder.Context(), Units: units}, files, nil
}

// SolcFrontend shells out to the solc binary in standard-JSON mode.
type SolcFrontend struct {
	// Binary overrides the executable name; defaults to solc.
	Binary string
}

func (f *SolcFrontend) Compile(path string, source string, version string, remappings []string) (*merge.UnitGroup, []string, error) {
	input := map[string]interface{}{
		"language": "Solidity",
		"sources": map[string]interface{}{
			path: map[string]string{"content": source},
		},
		"settings": map[string]interface{}{
			"remappings": remappings,
			"outputSelection": map[string]interface{}{
				"*": map[string][]string{"": {"ast"}},
			},
		},
	}
	request, err := json.Marshal(input)
	if err != nil {
		return nil, nil, err
	}

	binary := f.Binary
	if binary == "" {
		binary = "solc"
	}
	cmd := exec.Command(binary, "--standard-json")
	cmd.Stdin = bytes.NewReader(request)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, nil, fmt.Errorf("[%s] %s failed: %v: %s",
			errors.ErrorHostCompile, binary, err, strings.TrimSpace(stderr.String()))
	}
	return DecodeStandardJSON(stdout.Bytes())
}
