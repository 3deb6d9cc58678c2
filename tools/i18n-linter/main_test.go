// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFlattenYAML(t *testing.T) {
	m := map[string]interface{}{
		"top":      map[string]interface{}{"sub": "value"},
		"flat.key": "v",
	}
	keys := make(map[string]struct{})
	flattenYAML("", m, keys)
	for _, want := range []string{"top.sub", "flat.key"} {
		if _, ok := keys[want]; !ok {
			t.Fatalf("expected %s in %v", want, keys)
		}
	}
}

func TestLint(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pkg", "a.go"), `package pkg
var id = "menu.stored"
func f() { _ = i18n.T("menu.title"); _ = i18n.T("menu.unknown") }
`)
	writeFile(t, filepath.Join(root, "pkg", "a_test.go"), `package pkg
func g() { _ = i18n.T("test.only") }
`)
	writeFile(t, filepath.Join(root, "_skip", "b.go"), `package skip
func h() { _ = i18n.T("skipped.key") }
`)
	writeFile(t, filepath.Join(root, localesDir, "en.yaml"), `"menu.title": "Title"
"menu.stored": "Stored"
"menu.unused": "Unused"
`)
	writeFile(t, filepath.Join(root, localesDir, "de.yaml"), `"menu.title": "Titel"
"menu.unused": "Ungenutzt"
`)

	r, err := lint(root)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(r.Undefined) != 1 || r.Undefined[0] != "menu.unknown" {
		t.Fatalf("unexpected undefined ids: %v", r.Undefined)
	}
	if got := r.Missing["de.yaml"]; len(got) != 1 || got[0] != "menu.stored" {
		t.Fatalf("unexpected missing ids: %v", r.Missing)
	}
	if len(r.Orphans) != 1 || r.Orphans[0] != "menu.unused" {
		t.Fatalf("unexpected orphans: %v", r.Orphans)
	}

	var out bytes.Buffer
	ok, err := run(root, &out)
	if err != nil || ok {
		t.Fatalf("expected failing run, got ok=%v err=%v", ok, err)
	}
	if !strings.Contains(out.String(), "undefined: menu.unknown") {
		t.Fatalf("unexpected output: %s", out.String())
	}
}

func TestLintMissingPrimaryLocale(t *testing.T) {
	if _, err := lint(t.TempDir()); err == nil {
		t.Fatalf("expected error without %s", primaryLocale)
	}
}
