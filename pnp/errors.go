// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package pnp

import "errors"

var (
	ErrGateHeld        = errors.New("configuration space already entered")
	ErrSessionClosed   = errors.New("configuration session closed")
	ErrUnbound         = errors.New("table has no board configuration bound")
	ErrAbsentResource  = errors.New("resource not assigned")
	ErrUnknownFunction = errors.New("unknown function")
)
