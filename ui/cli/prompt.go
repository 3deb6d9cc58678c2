// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/toeirei/intelhub/internal/security"
	"golang.org/x/term"
)

// Terminal hooks, replaced in tests.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// prompter reads answers from the command's input. Passwords are read
// without echo when the input is a terminal.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	fd := -1
	if f, ok := in.(*os.File); ok {
		fd = int(f.Fd())
	}
	return &prompter{in: bufio.NewReader(in), out: out, fd: fd}
}

// Line prints label and returns the trimmed answer. io.EOF is returned when
// the input is exhausted before any text was read.
func (p *prompter) Line(label string) (string, error) {
	_, _ = fmt.Fprint(p.out, label)
	s, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// Password prints label and reads a password. The trailing line break is
// stripped; surrounding spaces are kept.
func (p *prompter) Password(label string) (security.Secret, error) {
	if p.fd >= 0 && isTerminal(p.fd) {
		_, _ = fmt.Fprint(p.out, label)
		b, err := readPassword(p.fd)
		_, _ = fmt.Fprintln(p.out)
		if err != nil {
			return nil, err
		}
		return security.FromBytes(b), nil
	}
	_, _ = fmt.Fprint(p.out, label)
	s, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return nil, err
	}
	return security.FromString(strings.TrimRight(s, "\r\n")), nil
}
