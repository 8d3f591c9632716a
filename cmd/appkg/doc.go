// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the appkg command line: install, uninstall, package
// and config, built on cobra and rendered through fang.
package cmd
