// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package dispatch

import (
	"context"

	"corral-cli/internal/container"
)

// dispatchInteractive on platforms without PTY support degrades to a plain
// interactive exec; the engine's own -i/-t handling takes over.
func (d *Dispatcher) dispatchInteractive(ctx context.Context, name container.ContainerName, req Request) (Result, error) {
	return d.dispatchPlainInteractive(ctx, name, req)
}
