// SPDX-License-Identifier: MPL-2.0

// Package fsutil holds the filesystem primitives used when materializing
// packages: atomic file replacement, recursive directory copy and directory
// links.
package fsutil
