// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers cover file and directory setup (MustWriteFile, MustMkdirAll,
// MustReadFile), directory snapshots for asserting that nothing was written
// (Snapshot), and resource cleanup (MustClose).
package testutil
