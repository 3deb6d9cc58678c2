// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

// Package legacy reads and appends the pre-migration users file: one
// `username,password_hash` record per line, UTF-8, no header, no escaping.
//
// The file has no locking. It is meant for a single writer; concurrent
// appenders can interleave lines.
package legacy

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/toeirei/intelhub/internal/model"
)

// ErrInvalidField is returned by Append when a field would corrupt the
// line format.
var ErrInvalidField = errors.New("legacy: field contains a comma or line break")

// FileStore is the legacy credential file at a fixed path.
type FileStore struct {
	path string
}

// NewFileStore returns a store for path. The file is not touched until an
// operation needs it.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Exists reports whether the backing file is present.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// ParseLine splits a raw line on its first comma. Empty lines, lines
// without a comma and lines with an empty field are not well-formed.
func ParseLine(raw string) (username, hash string, ok bool) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return "", "", false
	}
	u, h, found := strings.Cut(line, ",")
	if !found {
		return "", "", false
	}
	u, h = strings.TrimSpace(u), strings.TrimSpace(h)
	if u == "" || h == "" {
		return "", "", false
	}
	return u, h, true
}

// Lines returns a lazy sequence over every line of the file. Malformed lines
// are yielded with empty fields; see model.LegacyCredential.Valid. Each
// range over the sequence opens the file again, so it can be restarted. A
// line longer than maxLineLength is yielded as malformed. A missing file
// yields nothing. An open or read failure is yielded once,
// wrapped in model.ErrStoreUnavailable, and ends the sequence.
func (s *FileStore) Lines() iter.Seq2[model.LegacyCredential, error] {
	return func(yield func(model.LegacyCredential, error) bool) {
		f, err := os.Open(s.path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return
			}
			yield(model.LegacyCredential{}, fmt.Errorf("%w: open %s: %v", model.ErrStoreUnavailable, s.path, err))
			return
		}
		defer func() { _ = f.Close() }()

		r := bufio.NewReader(f)
		n := 0
		for {
			raw, overlong, read, err := readLine(r)
			if read > 0 {
				n++
				c := model.LegacyCredential{Line: n}
				if !overlong {
					if u, h, ok := ParseLine(raw); ok {
						c.Username, c.PasswordHash = u, h
					}
				}
				if !yield(c, nil) {
					return
				}
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(model.LegacyCredential{}, fmt.Errorf("%w: read %s: %v", model.ErrStoreUnavailable, s.path, err))
				return
			}
		}
	}
}

// maxLineLength bounds a single line. Longer lines are drained and yielded
// as malformed.
const maxLineLength = 1 << 20

// readLine reads one line including its terminator. A line over
// maxLineLength is consumed but not kept and overlong is set. read is the
// number of bytes consumed; it is zero only at the end of the file.
func readLine(r *bufio.Reader) (line string, overlong bool, read int, err error) {
	var buf []byte
	for {
		chunk, err := r.ReadSlice('\n')
		read += len(chunk)
		if !overlong {
			if len(buf)+len(chunk) > maxLineLength {
				overlong, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return string(buf), overlong, read, err
	}
}

// All is Lines without the malformed lines.
func (s *FileStore) All() iter.Seq2[model.LegacyCredential, error] {
	return func(yield func(model.LegacyCredential, error) bool) {
		for c, err := range s.Lines() {
			if err == nil && !c.Valid() {
				continue
			}
			if !yield(c, err) {
				return
			}
		}
	}
}

// Contains scans the file for an exact username match.
func (s *FileStore) Contains(ctx context.Context, username string) (bool, error) {
	u, err := s.FindByUsername(ctx, username)
	return u != nil, err
}

// FindByUsername returns the first record with an exact username match, or
// (nil, nil) when there is none. Legacy records carry no id or role; the
// role is reported as model.DefaultRole.
func (s *FileStore) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for c, err := range s.All() {
		if err != nil {
			return nil, err
		}
		if c.Username == username {
			return &model.User{Username: c.Username, PasswordHash: c.PasswordHash, Role: model.DefaultRole}, nil
		}
	}
	return nil, nil
}

// Append writes one `username,hash` line, creating the file and its
// directory when missing.
func (s *FileStore) Append(username, hash string) (err error) {
	if strings.ContainsAny(username, ",\r\n") || strings.ContainsAny(hash, ",\r\n") {
		return ErrInvalidField
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create %s: %v", model.ErrStoreUnavailable, dir, err)
		}
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", model.ErrStoreUnavailable, s.path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("legacy: close %s: %w", s.path, cerr)
		}
	}()
	if _, err := fmt.Fprintf(f, "%s,%s\n", username, hash); err != nil {
		return fmt.Errorf("legacy: write %s: %w", s.path, err)
	}
	return nil
}

// Insert appends a new record unless the username is already present, in
// which case it returns model.ErrDuplicate. The role is not stored; the
// legacy format has no column for it. The returned id is always zero.
func (s *FileStore) Insert(ctx context.Context, username, hash, _ string) (int64, error) {
	exists, err := s.Contains(ctx, username)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, model.ErrDuplicate
	}
	return 0, s.Append(username, hash)
}
