package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const modulePath = "clubvote"

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerRule lists the in-module prefixes a layer may import, relative to its
// own service. External modules are governed by stdlibOnly.
type layerRule struct {
	allowed    []string
	contracts  bool
	stdlibOnly bool
}

var layerRules = map[string]layerRule{
	"domain":      {allowed: []string{"domain"}, stdlibOnly: true},
	"ports":       {allowed: []string{"domain"}, contracts: true, stdlibOnly: true},
	"application": {allowed: []string{"application", "domain", "ports"}, contracts: true, stdlibOnly: true},
	"transport":   {stdlibOnly: true},
}

func main() {
	root := "contexts"
	if len(os.Args) > 1 {
		root = os.Args[1]
	}
	violations, err := collectViolations(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "boundary check failed: %v\n", err)
		os.Exit(2)
	}
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func collectViolations(root string) ([]violation, error) {
	var violations []violation

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) < 3 {
			return nil
		}
		servicePrefix := fmt.Sprintf("%s/contexts/%s/%s", modulePath, parts[0], parts[1])
		violations = append(violations, validateFile(path, parts[2], servicePrefix)...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File != violations[j].File {
			return violations[i].File < violations[j].File
		}
		if violations[i].Line != violations[j].Line {
			return violations[i].Line < violations[j].Line
		}
		return violations[i].Import < violations[j].Import
	})
	return violations, nil
}

func validateFile(path string, layer string, servicePrefix string) []violation {
	normalized := filepath.ToSlash(path)
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{File: normalized, Line: 1, Rule: "file must parse"}}
	}

	var violations []violation
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "\"")
		line := fset.Position(imp.Pos()).Line
		add := func(rule string) {
			violations = append(violations, violation{File: normalized, Line: line, Import: importPath, Rule: rule})
		}

		if hasPrefix(importPath, modulePath+"/contexts") && !hasPrefix(importPath, servicePrefix) {
			add("cross-module imports are forbidden")
		}
		if layer != "module.go" && hasPrefix(importPath, modulePath+"/internal") {
			add(layer + " must not import runtime infrastructure")
		}

		rule, ok := layerRules[layer]
		if !ok || isStdlib(importPath) {
			continue
		}
		if !strings.HasPrefix(importPath, modulePath+"/") {
			if rule.stdlibOnly {
				add(layer + " must not import third-party modules")
			}
			continue
		}
		if !rule.permits(importPath, servicePrefix) {
			add(layer + " import is outside explicit allowlist")
		}
	}
	return violations
}

func (r layerRule) permits(importPath string, servicePrefix string) bool {
	if r.contracts && hasPrefix(importPath, modulePath+"/contracts") {
		return true
	}
	for _, dir := range r.allowed {
		if hasPrefix(importPath, servicePrefix+"/"+dir) {
			return true
		}
	}
	return false
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isStdlib(importPath string) bool {
	if strings.HasPrefix(importPath, modulePath+"/") {
		return false
	}
	first := importPath
	if idx := strings.Index(first, "/"); idx != -1 {
		first = first[:idx]
	}
	return !strings.Contains(first, ".")
}
