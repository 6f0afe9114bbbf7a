// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package chips

import (
	"superio/pnp"
)

// init registers the chips.
func init() {
	pnp.RegisterChip(&It8716f{})
}
