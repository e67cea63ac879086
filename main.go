// SPDX-License-Identifier: MPL-2.0

package main

import cmd "corral-cli/cmd/corral"

func main() {
	cmd.Execute()
}
