// SPDX-License-Identifier: MPL-2.0

// Package config loads appkg's settings using Viper with CUE as the file
// format.
//
// Settings come from defaults, then config.cue (from the platform config
// directory, or the current directory), then APPKG_* environment variables
// such as APPKG_INSTALL_LOCAL_MODE. The file is validated against the
// embedded #Config schema. The result is a plain Config value that is built
// once per command and passed to every stage.
package config
