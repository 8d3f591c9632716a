// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalogue of Markdown help
// pages for the failures an install can run into. Commands attach an issue
// to an error; the top level renders the page with glamour.
package issue
