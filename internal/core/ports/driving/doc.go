// Package driving defines the interfaces the CLI uses to run pipelines,
// inspect run history and drive the scheduler.
//
// Implementations live in internal/core/services.
package driving
