// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import "github.com/toeirei/intelhub/internal/logging"

func dbLogf(format string, v ...any) {
	if logging.DebugEnabled() {
		logging.Debugf(format, v...)
	}
}
