// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/slotpack/slotpack/cmd/slotpack"

func main() {
	cmd.Execute()
}
