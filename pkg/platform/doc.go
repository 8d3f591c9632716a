// SPDX-License-Identifier: MPL-2.0

// Package platform maps the Go runtime's view of the host onto the operating
// system and architecture names used in package support matrices, and guards
// package directory names that some hosts cannot create.
package platform
