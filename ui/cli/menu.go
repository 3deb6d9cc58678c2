// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/toeirei/intelhub/internal/i18n"
)

func printMenu(w io.Writer) {
	banner := titleStyle.Render(i18n.T("menu.title")) + "\n" + subtitleStyle.Render(i18n.T("menu.subtitle"))
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, bannerStyle.Render(banner))
	_, _ = fmt.Fprintln(w, i18n.T("menu.option_register"))
	_, _ = fmt.Fprintln(w, i18n.T("menu.option_login"))
	_, _ = fmt.Fprintln(w, i18n.T("menu.option_exit"))
}

// runMenu is the interactive Register / Login / Exit loop. It returns when
// the user exits or the input ends.
func runMenu(ctx context.Context, st *rootState, p *prompter) error {
	_, _ = fmt.Fprintln(p.out, i18n.T("menu.welcome"))
	for {
		printMenu(p.out)
		choice, err := p.Line(i18n.T("menu.prompt"))
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			_, _ = fmt.Fprintln(p.out, "\n"+i18n.T("register.heading"))
			if _, err := registerFlow(ctx, st, p, "", ""); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
		case "2":
			_, _ = fmt.Fprintln(p.out, "\n"+i18n.T("login.heading"))
			ok, err := loginFlow(ctx, st, p, "")
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
			if ok {
				_, _ = fmt.Fprintln(p.out, i18n.T("menu.logged_in"))
				if _, err := p.Line(i18n.T("menu.press_enter")); errors.Is(err, io.EOF) {
					return nil
				}
			}
		case "3":
			_, _ = fmt.Fprintln(p.out, i18n.T("menu.goodbye"))
			return nil
		default:
			result(p.out, false, i18n.T("menu.invalid_option"))
		}
	}
}
