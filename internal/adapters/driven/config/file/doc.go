// Package file provides the TOML-backed configuration store and the loader
// that resolves it into domain.Settings.
package file
