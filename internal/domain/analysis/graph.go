package analysis

import (
	"path/filepath"
	"sort"
	"strings"
)

// DependencyGraph is a directed graph over the analyzed files of one
// codebase. Edges point from importer to imported file.
type DependencyGraph struct {
	Nodes  []string            `json:"nodes"`
	Edges  map[string][]string `json:"edges"`
	FanIn  map[string]int      `json:"fan_in"`
	FanOut map[string]int      `json:"fan_out"`
}

// BuildGraph resolves each file's import strings against the set of
// analyzed files. Resolution is heuristic: an import matches a file when
// the import's last segment equals the file's base name (sans extension)
// or its directory name. External imports produce no edge.
func BuildGraph(files map[string]*FileResult) *DependencyGraph {
	g := &DependencyGraph{
		Edges:  make(map[string][]string),
		FanIn:  make(map[string]int),
		FanOut: make(map[string]int),
	}

	// Index files by base name and by containing directory name.
	byName := make(map[string][]string)
	for path := range files {
		g.Nodes = append(g.Nodes, path)
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		dir := filepath.Base(filepath.Dir(path))
		byName[base] = append(byName[base], path)
		if dir != base {
			byName[dir] = append(byName[dir], path)
		}
	}
	sort.Strings(g.Nodes)

	for path, fr := range files {
		seen := make(map[string]struct{})
		for _, imp := range fr.Imports {
			for _, target := range byName[importTail(imp)] {
				if target == path {
					continue
				}
				if _, dup := seen[target]; dup {
					continue
				}
				seen[target] = struct{}{}
				g.Edges[path] = append(g.Edges[path], target)
				g.FanOut[path]++
				g.FanIn[target]++
			}
		}
		sort.Strings(g.Edges[path])
	}

	return g
}

// importTail returns the final segment of an import string, tolerating
// both slash-separated paths and dotted module names.
func importTail(imp string) string {
	imp = strings.Trim(imp, `"'`)
	if i := strings.LastIndexAny(imp, "/."); i >= 0 {
		return imp[i+1:]
	}
	return imp
}
