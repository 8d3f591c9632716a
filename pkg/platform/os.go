// SPDX-License-Identifier: MPL-2.0

package platform

import "runtime"

// runtime.GOOS values the host mapping recognizes.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// Operating system names used in support matrices.
const (
	OSLinux = "linux"
	OSMac   = "mac"
	OSWin   = "win"
)

// Architecture names used in support matrices.
const (
	ArchX86   = "x86"
	ArchX64   = "x64"
	ArchArm   = "arm"
	ArchArm64 = "arm64"
)

// OSName converts a runtime.GOOS value to its support-matrix name.
// Unknown systems map to "".
func OSName(goos string) string {
	switch goos {
	case Linux:
		return OSLinux
	case Darwin:
		return OSMac
	case Windows:
		return OSWin
	default:
		return ""
	}
}

// ArchName converts a runtime.GOARCH value to its support-matrix name.
// Unknown architectures map to "".
func ArchName(goarch string) string {
	switch goarch {
	case "386":
		return ArchX86
	case "amd64":
		return ArchX64
	case "arm":
		return ArchArm
	case "arm64":
		return ArchArm64
	default:
		return ""
	}
}

// HostOS is OSName(runtime.GOOS).
func HostOS() string { return OSName(runtime.GOOS) }

// HostArch is ArchName(runtime.GOARCH).
func HostArch() string { return ArchName(runtime.GOARCH) }
