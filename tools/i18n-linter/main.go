// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter checks the locale files against the Go sources. It fails when
// an i18n.T call names a message the primary locale lacks, or when another
// locale misses a message of the primary one. Messages no source file
// mentions are reported as orphans without failing.
//
// Run it from the repository root:
//
//	go run ./tools/i18n-linter
package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	localesDir    = "internal/i18n/locales"
	primaryLocale = "en.yaml"
)

var (
	callRe    = regexp.MustCompile(`i18n\.T\("([^"]+)"`)
	literalRe = regexp.MustCompile(`"([a-z]+\.[a-z_]+)"`)
)

func main() {
	ok, err := run(".", os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "i18n-linter: %v\n", err)
		os.Exit(2)
	}
	if !ok {
		os.Exit(1)
	}
}

// report is the outcome of one lint run.
type report struct {
	// Undefined lists i18n.T ids missing from the primary locale.
	Undefined []string
	// Missing maps a locale file to the primary ids it lacks.
	Missing map[string][]string
	Orphans []string
}

func (r report) ok() bool {
	return len(r.Undefined) == 0 && len(r.Missing) == 0
}

// run lints the tree at root and writes a summary to out.
func run(root string, out io.Writer) (bool, error) {
	r, err := lint(root)
	if err != nil {
		return false, err
	}
	for _, id := range r.Undefined {
		_, _ = fmt.Fprintf(out, "undefined: %s\n", id)
	}
	files := make([]string, 0, len(r.Missing))
	for f := range r.Missing {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		for _, id := range r.Missing[f] {
			_, _ = fmt.Fprintf(out, "missing in %s: %s\n", f, id)
		}
	}
	for _, id := range r.Orphans {
		_, _ = fmt.Fprintf(out, "orphaned: %s\n", id)
	}
	if r.ok() {
		_, _ = fmt.Fprintln(out, "locales are consistent")
	}
	return r.ok(), nil
}

func lint(root string) (report, error) {
	r := report{Missing: map[string][]string{}}

	called, mentioned, err := findUsedKeys(root)
	if err != nil {
		return r, err
	}
	dir := filepath.Join(root, localesDir)
	primary, err := loadKeysFromLocale(filepath.Join(dir, primaryLocale))
	if err != nil {
		return r, fmt.Errorf("load %s: %w", primaryLocale, err)
	}

	for id := range called {
		if _, ok := primary[id]; !ok {
			r.Undefined = append(r.Undefined, id)
		}
	}
	for id := range primary {
		_, c := called[id]
		_, m := mentioned[id]
		if !c && !m {
			r.Orphans = append(r.Orphans, id)
		}
	}
	sort.Strings(r.Undefined)
	sort.Strings(r.Orphans)

	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return r, err
	}
	for _, f := range files {
		if filepath.Base(f) == primaryLocale {
			continue
		}
		keys, err := loadKeysFromLocale(f)
		if err != nil {
			return r, fmt.Errorf("load %s: %w", filepath.Base(f), err)
		}
		var missing []string
		for id := range primary {
			if _, ok := keys[id]; !ok {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			r.Missing[filepath.Base(f)] = missing
		}
	}
	return r, nil
}

// findUsedKeys scans non-test Go files below root. called holds ids passed
// directly to i18n.T; mentioned holds other string literals shaped like ids,
// such as message ids stored in struct fields.
func findUsedKeys(root string) (called, mentioned map[string]struct{}, err error) {
	called = map[string]struct{}{}
	mentioned = map[string]struct{}{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (name == "tools" || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for _, m := range callRe.FindAllSubmatch(content, -1) {
			called[string(m[1])] = struct{}{}
		}
		for _, m := range literalRe.FindAllSubmatch(content, -1) {
			mentioned[string(m[1])] = struct{}{}
		}
		return nil
	})
	return called, mentioned, err
}

// loadKeysFromLocale reads a YAML file and returns a flat map of its keys.
func loadKeysFromLocale(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}

	keys := make(map[string]struct{})
	flattenYAML("", data, keys)
	return keys, nil
}

// flattenYAML converts a nested map into dot-separated keys, the way the
// i18n bundle names nested messages.
func flattenYAML(prefix string, node interface{}, keys map[string]struct{}) {
	switch v := node.(type) {
	case map[string]interface{}:
		for k, val := range v {
			newPrefix := k
			if prefix != "" {
				newPrefix = prefix + "." + k
			}
			flattenYAML(newPrefix, val, keys)
		}
	default:
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
	}
}
