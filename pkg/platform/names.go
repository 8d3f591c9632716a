// SPDX-License-Identifier: MPL-2.0

package platform

import "strings"

// windowsReservedNames cannot be used as file or directory names on Windows,
// with or without an extension.
var windowsReservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {},
	"COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {},
	"LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// IsWindowsReservedName reports whether name, ignoring case and any
// extension, is reserved on Windows. Packages are installed into a directory
// named after the package, so such names are rejected on every host.
func IsWindowsReservedName(name string) bool {
	base, _, _ := strings.Cut(strings.ToUpper(name), ".")
	_, ok := windowsReservedNames[base]
	return ok
}
