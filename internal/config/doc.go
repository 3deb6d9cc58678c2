// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config provides configuration loading and persistence for
// Intelhub. It uses Viper for file, environment and flag parsing and
// goccy/go-yaml to write default configuration files.
package config
