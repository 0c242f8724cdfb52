// Package connectors holds the source adapters. Each subpackage extracts
// raw items from one source and normalises them into domain records for the
// pipeline.
package connectors
