// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

// Package buildvars contains variables injected at build time.
package buildvars

import "runtime/debug"

// Version is set at link time via `-ldflags -X github.com/toeirei/intelhub/buildvars.Version=...`.
// It will be empty for local or development builds.
var Version string

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// VersionOrDefault returns Version if set, then the module version recorded
// in the binary, then def. A VCS revision is appended when known.
func VersionOrDefault(def string) string {
	v := Version
	var rev string
	if info, ok := readBuildInfo(); ok && info != nil {
		if v == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				rev = s.Value[:7]
			}
		}
	}
	if v == "" {
		v = def
	}
	if rev != "" {
		v += " (" + rev + ")"
	}
	return v
}
