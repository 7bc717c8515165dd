package constants

// JobStatus is the lifecycle state of one queued document.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "QUEUED"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusExtracted JobStatus = "EXTRACTED" // record produced
	JobStatusFailed    JobStatus = "FAILED"    // layout could not be loaded
)
