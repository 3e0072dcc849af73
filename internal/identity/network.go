// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package identity

import (
	"bytes"
	"context"
	"os/exec"
)

// addressCommand lists the host's network addresses.
var addressCommand = []string{"hostname", "-I"}

// WiFiConnected reports whether the host has any network address. It is
// informational only; a failing command counts as disconnected.
func WiFiConnected(ctx context.Context) bool {
	out, err := exec.CommandContext(ctx, addressCommand[0], addressCommand[1:]...).Output()
	if err != nil {
		return false
	}
	return len(bytes.TrimSpace(out)) > 0
}
