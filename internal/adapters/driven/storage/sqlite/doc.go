// Package sqlite provides the local state database for dself.
//
// The database lives at ~/.dself/data/state.db and holds run history and
// scheduler state. It is separate from the remote record store: extracted
// records are never written here.
//
// The pure-Go modernc.org/sqlite driver is used so the binary builds
// without cgo.
package sqlite
