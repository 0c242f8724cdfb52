package domain

import "time"

// RunState is a step of a source run.
type RunState string

const (
	RunIdle        RunState = "idle"
	RunExtracting  RunState = "extracting"
	RunUnreachable RunState = "unreachable"
	RunNormalising RunState = "normalising"
	RunSanitising  RunState = "sanitising"
	RunPersisting  RunState = "persisting"
	RunDone        RunState = "done"
)

// Destination records where a batch ended up.
type Destination string

const (
	// DestinationNone means nothing was written.
	DestinationNone Destination = "none"
	// DestinationRemote means the remote store accepted the whole batch.
	DestinationRemote Destination = "remote"
	// DestinationLocal means the remote store is not configured and the
	// batch was written to a local file.
	DestinationLocal Destination = "local"
	// DestinationFallback means the remote write failed and the batch was
	// written to a local file carrying FailedPrefix.
	DestinationFallback Destination = "fallback"
)

// FailedPrefix distinguishes fallback files from local-only saves.
const FailedPrefix = "failed_"

// PersistOutcome is the result of handing a batch to the persistence gateway.
type PersistOutcome struct {
	// Destination is where the batch was written.
	Destination Destination

	// Submitted is how many records were offered to the remote store.
	Submitted int

	// Accepted is how many records the destination holds.
	Accepted int

	// Path is the local file written, if any.
	Path string

	// Err is the remote or local failure that shaped the outcome, if any.
	Err error
}

// Degraded reports whether the batch fell back to a local file after a
// remote failure.
func (o PersistOutcome) Degraded() bool {
	return o.Destination == DestinationFallback
}

// RunReport summarises one extraction run of one source.
type RunReport struct {
	ID          string
	Source      SourceType
	State       RunState
	Extracted   int
	Submitted   int
	Persisted   int
	Destination Destination
	Path        string
	Error       string
	StartedAt   time.Time
	EndedAt     time.Time
}

// Succeeded reports whether the run completed and its batch, if any,
// was written somewhere.
func (r RunReport) Succeeded() bool {
	if r.State != RunDone {
		return false
	}
	return r.Extracted == 0 || r.Destination != DestinationNone
}

// Duration returns how long the run took.
func (r RunReport) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}
