// Package domain holds the types every layer of dself shares: the record
// shapes each source produces, the per-source persistence specs, run
// reports and resolved settings.
//
// It imports only the standard library. Adapters, connectors and services
// depend on domain; domain depends on none of them.
package domain
