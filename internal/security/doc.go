// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package security provides password hashing and verification plus a small
// wrapper that keeps plaintext passwords out of logs and formatted output.
//
// Two algorithms are supported: bcrypt (the default, and the format used by
// the legacy users file) and argon2id. Hashes are self-describing, so
// verification picks the algorithm from the hash prefix regardless of which
// one is configured for new hashes.
package security
