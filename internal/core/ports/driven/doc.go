// Package driven lists the interfaces core services call into.
//
// Adapters under internal/adapters/driven and internal/connectors
// implement them. A service needs a SourceAdapter per source, a FileWriter
// and a ConfigStore. The rest may be nil:
//
//   - RemoteStore nil: batches are written to local files only
//   - RunStore nil: run reports are logged, not kept
//   - RunObserver nil: no metrics
//   - BatchFilter nil: batches are persisted unfiltered
//
// Only the domain package may be imported here.
package driven
