// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/appkg/appkg/cmd/appkg"

func main() {
	cmd.Execute()
}
